// clientctl is the command-line companion to the server: it runs workbook
// imports and inspects client records against the same database without
// going through the HTTP surface.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
