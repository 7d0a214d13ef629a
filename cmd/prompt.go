/*
Copyright © 2026 ソニーレベル <C7kali3@gmail.com>

*/
package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"

	"github.com/sony-level/ktp-tester/internal/fetcher"
)

// promptRequest asks for the repository reference and, unless --keep was
// given, whether to keep the checkout
func promptRequest(askKeep bool) (string, bool, error) {
	var reference string
	err := survey.AskOne(&survey.Input{
		Message: "Repository URL:",
		Help:    "Clone URL, optionally followed by /commit/<revision>",
	}, &reference, survey.WithValidator(survey.Required), survey.WithValidator(validReference))
	if err != nil {
		return "", false, fmt.Errorf("no repository given: %w", err)
	}

	keep := keepWorkspace
	if askKeep {
		if err := survey.AskOne(&survey.Confirm{
			Message: "Store project locally?",
			Default: false,
		}, &keep); err != nil {
			return "", false, err
		}
	}

	return strings.TrimSpace(reference), keep, nil
}

// validReference rejects input that has no owner/name
func validReference(ans interface{}) error {
	s, ok := ans.(string)
	if !ok {
		return errors.New("expected text")
	}
	_, err := fetcher.Identify(fetcher.Parse(strings.TrimSpace(s)).FetchURL)
	return err
}
