// Package cvisit holds C visitor tables used to exercise the native bridge.
// Each table keeps its state in C statics; call Reset before every
// conversion.
package cvisit

/*
#cgo CFLAGS: -I${SRCDIR}/../../include
#define HTMD_INTERNAL
#include <stdio.h>
#include <stdlib.h>
#include <string.h>
#include "htmd.h"

static char event_log[8192];
static int p_count;
static int retain_violations;
static const char *retained;
static char attr_log[1024];
static int attr_count = -1;

static void reset_state(void) {
    event_log[0] = '\0';
    p_count = 0;
    retain_violations = 0;
    retained = NULL;
    attr_log[0] = '\0';
    attr_count = -1;
}

static void log_event(const char *kind, const char *what) {
    size_t used = strlen(event_log);
    snprintf(event_log + used, sizeof(event_log) - used, "%s:%s;", kind, what ? what : "");
}

static htmd_visit_result ok(void) {
    htmd_visit_result r = {HTMD_CONTINUE, NULL, NULL};
    return r;
}

static htmd_visit_result result(int32_t type, const char *output, const char *message) {
    htmd_visit_result r = {type, output ? strdup(output) : NULL, message ? strdup(message) : NULL};
    return r;
}

static htmd_visit_result skip_section(const htmd_node_context *ctx, void *ud) {
    if (strcmp(ctx->tag_name, "section") == 0) {
        return result(HTMD_SKIP, NULL, NULL);
    }
    return ok();
}

static htmd_visit_result custom_second_p(const htmd_node_context *ctx, void *ud, const char *output) {
    if (strcmp(ctx->tag_name, "p") == 0 && ++p_count == 2) {
        return result(HTMD_CUSTOM, "CUSTOM", NULL);
    }
    return ok();
}

static htmd_visit_result error_second_p(const htmd_node_context *ctx, void *ud) {
    if (strcmp(ctx->tag_name, "p") == 0 && ++p_count == 2) {
        return result(HTMD_ERROR, NULL, "stop here");
    }
    return ok();
}

static htmd_visit_result retain_tag(const htmd_node_context *ctx, void *ud) {
    if (retained != NULL && retained[0] != '\0') {
        retain_violations++;
    }
    retained = ctx->tag_name;
    return ok();
}

static htmd_visit_result record_attrs(const htmd_node_context *ctx, void *ud) {
    const htmd_attribute *a;
    size_t used;
    if (attr_count >= 0 || ctx->attribute_count == 0) {
        return ok();
    }
    attr_count = 0;
    for (a = ctx->attributes; a->key != NULL; a++) {
        used = strlen(attr_log);
        snprintf(attr_log + used, sizeof(attr_log) - used, "%s=%s;", a->key, a->value);
        attr_count++;
    }
    return ok();
}

static htmd_visit_result link_only(const htmd_node_context *ctx, void *ud, const char *href, const char *text,
                                   const char *title) {
    char buf[512];
    snprintf(buf, sizeof(buf), "LINK(%s)", href);
    return result(HTMD_CUSTOM, buf, NULL);
}

static htmd_visit_result null_custom(const htmd_node_context *ctx, void *ud) {
    if (strcmp(ctx->tag_name, "p") == 0) {
        return result(HTMD_CUSTOM, NULL, NULL);
    }
    return ok();
}

static htmd_visit_result bad_kind(const htmd_node_context *ctx, void *ud) {
    if (strcmp(ctx->tag_name, "p") == 0) {
        return result(42, "stray", NULL);
    }
    return ok();
}

static htmd_visit_result skip_with_payload(const htmd_node_context *ctx, void *ud) {
    if (strcmp(ctx->tag_name, "p") == 0) {
        return result(HTMD_SKIP, "ignored", "ignored");
    }
    return ok();
}

static htmd_visit_result log_start(const htmd_node_context *ctx, void *ud) {
    log_event("start", ctx->tag_name);
    return ok();
}

static htmd_visit_result log_end(const htmd_node_context *ctx, void *ud, const char *output) {
    log_event("end", ctx->tag_name);
    return ok();
}

static htmd_visit_result log_text(const htmd_node_context *ctx, void *ud, const char *text) {
    log_event("text", text);
    return ok();
}

static htmd_visit_result log_link(const htmd_node_context *ctx, void *ud, const char *href, const char *text,
                                  const char *title) {
    log_event("link", href);
    log_event("title", title ? title : "(null)");
    return ok();
}

static htmd_visit_result log_row(const htmd_node_context *ctx, void *ud, const char *const *cells, size_t n,
                                 bool is_header) {
    size_t i;
    log_event("row", is_header ? "header" : "body");
    for (i = 0; cells[i] != NULL; i++) {
        log_event("cell", cells[i]);
    }
    return ok();
}

static htmd_visit_result log_heading(const htmd_node_context *ctx, void *ud, uint32_t level, const char *text,
                                     const char *id) {
    char buf[16];
    snprintf(buf, sizeof(buf), "%u", level);
    log_event("heading", buf);
    log_event("id", id ? id : "(null)");
    return ok();
}

static htmd_visit_result log_form(const htmd_node_context *ctx, void *ud, const char *action, const char *method) {
    log_event("action", action ? action : "(null)");
    log_event("method", method ? method : "(null)");
    return ok();
}

static htmd_visit_result log_input(const htmd_node_context *ctx, void *ud, const char *input_type, const char *name,
                                   const char *value) {
    log_event("input", input_type);
    log_event("name", name ? name : "(null)");
    log_event("value", value ? value : "(null)");
    return ok();
}

static htmd_visitor empty_table;
static htmd_visitor skip_table = {.visit_element_start = skip_section};
static htmd_visitor custom_table = {.visit_element_end = custom_second_p};
static htmd_visitor error_table = {.visit_element_start = error_second_p};
static htmd_visitor retain_table = {.visit_element_start = retain_tag};
static htmd_visitor attrs_table = {.visit_element_start = record_attrs};
static htmd_visitor link_table = {.visit_link = link_only};
static htmd_visitor null_custom_table = {.visit_element_start = null_custom};
static htmd_visitor bad_kind_table = {.visit_element_start = bad_kind};
static htmd_visitor skip_payload_table = {.visit_element_start = skip_with_payload};
static htmd_visitor events_table = {
    .visit_element_start = log_start,
    .visit_element_end = log_end,
    .visit_text = log_text,
};
static htmd_visitor args_table = {
    .visit_link = log_link,
    .visit_table_row = log_row,
    .visit_heading = log_heading,
    .visit_form = log_form,
    .visit_input = log_input,
};

static void *table_ptr(int which) {
    switch (which) {
    case 0: return &empty_table;
    case 1: return &skip_table;
    case 2: return &custom_table;
    case 3: return &error_table;
    case 4: return &retain_table;
    case 5: return &attrs_table;
    case 6: return &link_table;
    case 7: return &null_custom_table;
    case 8: return &bad_kind_table;
    case 9: return &skip_payload_table;
    case 10: return &events_table;
    case 11: return &args_table;
    }
    return NULL;
}

static const char *events(void) { return event_log; }
static const char *attrs(void) { return attr_log; }
static int attrs_count(void) { return attr_count; }
static int violations(void) { return retain_violations; }
*/
import "C"

import "unsafe"

// Scenario selects a table.
type Scenario int

const (
	// Empty has no callbacks.
	Empty Scenario = iota
	// SkipSection skips every <section>.
	SkipSection
	// CustomSecondParagraph replaces the second <p> at element end.
	CustomSecondParagraph
	// ErrorSecondParagraph aborts at the second <p> start with "stop here".
	ErrorSecondParagraph
	// RetainTag keeps the previous tag name pointer and checks it was wiped.
	RetainTag
	// RecordAttributes records the first attribute list it sees.
	RecordAttributes
	// LinkOnly replaces links with LINK(href) and sets nothing else.
	LinkOnly
	// NullCustom returns Custom with a NULL output for <p>.
	NullCustom
	// BadKind returns an unknown result type for <p>.
	BadKind
	// SkipWithPayload returns Skip carrying stray payloads for <p>.
	SkipWithPayload
	// Events logs element start, element end and text.
	Events
	// Args logs link, heading, table row, form and input arguments, with
	// "(null)" for an absent optional argument.
	Args
)

// Table returns a pointer to the scenario's htmd_visitor.
func Table(s Scenario) unsafe.Pointer {
	return C.table_ptr(C.int(s))
}

// Reset clears every scenario's recorded state.
func Reset() { C.reset_state() }

// EventLog returns the event log as "kind:value;" entries.
func EventLog() string { return C.GoString(C.events()) }

// Attributes returns the recorded "key=value;" list and its entry count, or
// -1 if no element with attributes was seen.
func Attributes() (string, int) {
	return C.GoString(C.attrs()), int(C.attrs_count())
}

// RetainViolations counts retained pointers that still held data on the
// next callback.
func RetainViolations() int { return int(C.violations()) }
