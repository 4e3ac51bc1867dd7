package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/heimdall-ai/heimdall/internal/apperr"
	"github.com/heimdall-ai/heimdall/models"
	"github.com/spf13/viper"
)

// PrintError prints an error message without exiting, allowing for recovery.
func PrintError(userMsg string, technicalErr error) {
	if viper.GetBool("verbose") && technicalErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", technicalErr)
	} else {
		fmt.Fprintln(os.Stderr, userMsg)
	}
}

// LogError logs an error without printing to stderr if verbose mode is off.
func LogError(msg string, err error) {
	if viper.GetBool("verbose") {
		if err != nil {
			fmt.Fprintf(os.Stderr, "[DEBUG] %s: %v\n", msg, err)
		} else {
			fmt.Fprintf(os.Stderr, "[DEBUG] %s\n", msg)
		}
	}
}

// userMessage turns err into the short form shown without --verbose.
func userMessage(err error) string {
	var ve *models.ValidationError
	if errors.As(err, &ve) {
		msg := "Error: invalid rule:"
		for _, f := range ve.Fields {
			msg += fmt.Sprintf("\n  %s: %s", f.Field, f.Message)
		}
		return msg
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return "Error: " + ae.Message
	}
	return "Error: " + err.Error()
}
