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

package htmd

import "fmt"

// ResultKind identifies the active variant of a VisitResult. The numeric
// values are shared with the C ABI.
type ResultKind uint32

const (
	ResultContinue     ResultKind = 0
	ResultCustom       ResultKind = 1
	ResultSkip         ResultKind = 2
	ResultPreserveHTML ResultKind = 3
	ResultError        ResultKind = 4
)

func (k ResultKind) String() string {
	switch k {
	case ResultContinue:
		return "continue"
	case ResultCustom:
		return "custom"
	case ResultSkip:
		return "skip"
	case ResultPreserveHTML:
		return "preserve_html"
	case ResultError:
		return "error"
	}
	return fmt.Sprintf("ResultKind(%d)", uint32(k))
}

// VisitResult tells the driver what to do with the node a callback was
// invoked for. The zero value is Continue.
type VisitResult struct {
	kind    ResultKind
	payload string
}

// Continue keeps the default rendering.
func Continue() VisitResult { return VisitResult{} }

// Custom replaces the node's rendering, subtree included, with output.
func Custom(output string) VisitResult {
	return VisitResult{kind: ResultCustom, payload: output}
}

// Skip omits the node and its subtree.
func Skip() VisitResult { return VisitResult{kind: ResultSkip} }

// PreserveHTML emits the node's HTML source instead of converting it.
func PreserveHTML() VisitResult { return VisitResult{kind: ResultPreserveHTML} }

// Error aborts the whole conversion with message.
func Error(message string) VisitResult {
	return VisitResult{kind: ResultError, payload: message}
}

// Kind returns the active variant.
func (r VisitResult) Kind() ResultKind { return r.kind }

// Output returns the replacement text of a Custom result.
func (r VisitResult) Output() string {
	if r.kind != ResultCustom {
		return ""
	}
	return r.payload
}

// Message returns the error message of an Error result.
func (r VisitResult) Message() string {
	if r.kind != ResultError {
		return ""
	}
	return r.payload
}

func (r VisitResult) String() string {
	switch r.kind {
	case ResultCustom:
		return fmt.Sprintf("custom(%q)", r.payload)
	case ResultError:
		return fmt.Sprintf("error(%q)", r.payload)
	}
	return r.kind.String()
}
