package browser

import "github.com/atotto/clipboard"

func usePrimarySelection() {
	clipboard.Primary = true
}
