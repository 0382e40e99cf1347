/*
Package terminal implements ports.UIBinding as a page drawn on a terminal.

The page is laid out from a script: one row per line (container, text and
caret), the block that holds the rows, and the finale below it. Every
mutation redraws the whole frame with termenv.

Terminals have no CSS transitions, so the page simulates one: applying
"fadeout" draws the element faint and, after the configured fade duration,
hides it and delivers the transition-finished notification. A fade duration
of zero behaves like a host without transition support: the element is
hidden at once and no notification is ever sent.
*/
package terminal
