package b

import "os"

func main() {
	os.Exit(0)
}

// Exit stops the process.
func Exit() {
	os.Exit(1)
}
