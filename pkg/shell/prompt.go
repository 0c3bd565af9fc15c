package shell

import (
	"errors"

	"github.com/manifoldco/promptui"
)

// ErrAborted is returned when the user backs out of a prompt with Ctrl+C.
var ErrAborted = errors.New("aborted")

func wrapPromptErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrAbort) {
		return ErrAborted
	}
	return err
}

func promptInput(label, defaultValue string) (string, error) {
	p := promptui.Prompt{Label: label, Default: defaultValue}
	result, err := p.Run()
	return result, wrapPromptErr(err)
}

func promptPassword(label string) (string, error) {
	p := promptui.Prompt{Label: label, Mask: '*'}
	result, err := p.Run()
	return result, wrapPromptErr(err)
}

func promptSelect(label string, items []string) (int, error) {
	p := promptui.Select{Label: label, Items: items, Size: 10}
	i, _, err := p.Run()
	return i, wrapPromptErr(err)
}

func promptConfirm(label string) (bool, error) {
	p := promptui.Prompt{Label: label, IsConfirm: true}
	_, err := p.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, wrapPromptErr(err)
	}
	return true, nil
}
