// Command ig is the operator CLI for intentguard: inspecting the intent
// store and trace journal a running pipeline shares, and dry-running the
// gate against a hypothetical call.
package main

func main() {
	Execute()
}
