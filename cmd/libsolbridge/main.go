// Command libsolbridge is the C ABI of the bridge, built with
//
//	go build -buildmode=c-shared -o libsolbridge.so ./cmd/libsolbridge
//
// Transactions, accounts and RPC clients are opaque uintptr_t handles that
// the caller releases with the matching *_destroy function. Fallible calls
// take a char **error_out that, if non-null, receives a "<Kind>: <message>"
// string on failure. Functions returning int report 1 on success and 0 on
// failure, except predicates, which return 1 or 0 and -1 on failure. Every string or buffer returned to the
// caller is allocated with malloc and owned by the caller, who releases it
// with solbridge_free_string or solbridge_free_buffer. Caller supplied
// buffers are only read for the duration of the call.
package main

import "C"

func main() {}
