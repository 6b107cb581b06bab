package display

import (
	"fmt"
	"os"

	"github.com/backmassage/vidconv/internal/logging"
)

// PrintBanner prints the ASCII art banner; uses Magenta if colors are enabled.
func PrintBanner() {
	if logging.Magenta != "" {
		fmt.Fprint(os.Stdout, "\033[1;95m")
	}
	fmt.Fprint(os.Stdout, `       _     _
__   _(_) __| | ___ ___  _ ____   __
\ \ / / |/ _`+"`"+` |/ __/ _ \| '_ \ \ / /
 \ V /| | (_| | (_| (_) | | | \ V /
  \_/ |_|\__,_|\___\___/|_| |_|\_/
`)
	if logging.Magenta != "" {
		fmt.Fprintln(os.Stdout, logging.NC)
	}
}
