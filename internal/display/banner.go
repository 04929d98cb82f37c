package display

import (
	"fmt"
	"os"

	"github.com/backmassage/stickerpress/internal/term"
)

// PrintBanner prints the ASCII art banner; uses Magenta if colors are enabled.
func PrintBanner() {
	if term.Enabled() {
		fmt.Fprint(os.Stdout, term.Magenta)
	}
	fmt.Fprint(os.Stdout, ` ____  _   _      _              ____
/ ___|| |_(_) ___| | _____ _ __ |  _ \ _ __ ___  ___ ___
\___ \| __| |/ __| |/ / _ \ '__|| |_) | '__/ _ \/ __/ __|
 ___) | |_| | (__|   <  __/ |   |  __/| | |  __/\__ \__ \
|____/ \__|_|\___|_|\_\___|_|   |_|   |_|  \___||___/___/
`)
	if term.Enabled() {
		fmt.Fprintln(os.Stdout, term.NC)
	}
}
