// Package main provides the glean CLI.
//
// glean fetches one page, checks robots.txt, and prints every element that
// matches a CSS selector.
//
// Usage:
//
//	glean -u https://example.com -s "h1, h2"
//	glean -u https://example.com -s a -f json
//	glean serve
package main

func main() {
	Execute()
}
