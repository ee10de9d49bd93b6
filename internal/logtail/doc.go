// Package logtail reads the end of pawdesk's own log file for the
// diagnostics view.
//
// Read extracts the last N lines with a ring buffer, scanning the file once
// and holding O(N) memory regardless of file size. FormatLine turns the
// JSON records the logger writes into compact colorized display lines
// (dim timestamp, level-colored tag, message, sorted attributes); anything
// that is not a JSON record passes through untouched.
package logtail
