// Package platform hands links and dial intents to the operating system.
package platform

import (
	"fmt"
	"strings"

	"github.com/pkg/browser"
)

// openURL is swapped in tests.
var openURL = browser.OpenURL

// OpenURL opens url with the system handler.
func OpenURL(url string) error {
	if err := openURL(url); err != nil {
		return fmt.Errorf("opening %s: %w", url, err)
	}
	return nil
}

// DialURL returns the tel: link for number, keeping only digits and a
// leading plus sign.
func DialURL(number string) string {
	var sb strings.Builder
	for i, r := range strings.TrimSpace(number) {
		if (r >= '0' && r <= '9') || (r == '+' && i == 0) {
			sb.WriteRune(r)
		}
	}
	return "tel:" + sb.String()
}

// Dial asks the system to call number.
func Dial(number string) error {
	return OpenURL(DialURL(number))
}
