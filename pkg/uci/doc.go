/*
Package uci translates between domain values and the Universal Chess Interface text protocol.

Encode turns a domain.Command into the exact line an engine expects on stdin.
Decode turns one line of engine stdout into a domain.Message. Both are pure and
safe for concurrent use.

Decoding is a tolerant token scan rather than a grammar: unknown tokens are
skipped, and a line that cannot be understood (including one with a malformed
number) is returned as domain.Unrecognized instead of failing. A bad line
never affects the lines that follow it.
*/
package uci
