// Copyright 2026 Conductor OSS
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

// Command libhtmd builds the C shared library declared in include/htmd.h:
//
//	go build -buildmode=c-shared -o libhtmd.so ./cmd/libhtmd
//
// HTMD_POLICY=propagate makes callback failures abort the conversion instead
// of being skipped.
package main

/*
#cgo CFLAGS: -I${SRCDIR}/../../include
#define HTMD_INTERNAL
#include <stdint.h>
#include <stdlib.h>
#include "htmd.h"
*/
import "C"

import (
	"unsafe"
)

func main() {}

//export htmd_visitor_create
func htmd_visitor_create(table *C.htmd_visitor) C.uintptr_t {
	return C.uintptr_t(open(unsafe.Pointer(table)))
}

//export htmd_visitor_free
func htmd_visitor_free(handle C.uintptr_t) {
	release(uintptr(handle))
}

//export htmd_convert
func htmd_convert(html *C.char, out **C.char, outLen *C.size_t, errOut **C.char) C.int {
	if html == nil {
		return fail(errOut, errNilHTML)
	}
	md, err := convert(C.GoString(html))
	if err != nil {
		return fail(errOut, err)
	}
	return succeed(out, outLen, md)
}

//export htmd_convert_with_visitor
func htmd_convert_with_visitor(html *C.char, handle C.uintptr_t, out **C.char, outLen *C.size_t, errOut **C.char) C.int {
	if html == nil {
		return fail(errOut, errNilHTML)
	}
	md, err := convertWith(C.GoString(html), uintptr(handle))
	if err != nil {
		return fail(errOut, err)
	}
	return succeed(out, outLen, md)
}

//export htmd_free_string
func htmd_free_string(s *C.char) {
	if s != nil {
		C.free(unsafe.Pointer(s))
	}
}

func succeed(out **C.char, outLen *C.size_t, md string) C.int {
	if out != nil {
		*out = C.CString(md)
	}
	if outLen != nil {
		*outLen = C.size_t(len(md))
	}
	return 0
}

func fail(errOut **C.char, err error) C.int {
	if errOut != nil {
		*errOut = C.CString(err.Error())
	}
	return -1
}
