//go:build windows

package reporter

import (
	"golang.org/x/sys/windows"
)

func showMessageBox(title, text string, icon Icon) error {
	titlePtr, err := windows.UTF16PtrFromString(title)
	if err != nil {
		return err
	}
	textPtr, err := windows.UTF16PtrFromString(text)
	if err != nil {
		return err
	}

	style := uint32(windows.MB_OK | windows.MB_ICONWARNING)
	if icon == IconError {
		style = windows.MB_OK | windows.MB_ICONERROR
	}

	_, err = windows.MessageBox(0, textPtr, titlePtr, style)
	return err
}
