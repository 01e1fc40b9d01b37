//go:build !windows

package reporter

import "errors"

var errNoDialog = errors.New("reporter: modal dialogs are only supported on windows")

func showMessageBox(string, string, Icon) error {
	return errNoDialog
}
