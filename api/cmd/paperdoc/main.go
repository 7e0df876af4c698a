// Command paperdoc turns photographed Tamil question papers into editable DOCX files.
//
// Usage:
//
//	paperdoc serve                      # HTTP upload/download service
//	paperdoc bot                        # Telegram bot (webhook or long polling)
//	paperdoc convert page.jpg -m mixed  # one-shot local conversion
//	paperdoc templates --dir templates  # write the built-in DOCX templates
package main

import "paper-docx/api/cmd/paperdoc/cmd"

var version = "dev"

func main() {
	cmd.Version = version
	cmd.Execute()
}
