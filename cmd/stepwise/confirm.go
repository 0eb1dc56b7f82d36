package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/felixgeelhaar/stepwise/internal/domain/sequence"
)

// promptConfirmer lists the pending steps and reads a y/N answer from in.
func promptConfirmer(in io.Reader, out io.Writer) sequence.Confirmer {
	return sequence.ConfirmFunc(func(_ context.Context, pending []string) (bool, error) {
		_, _ = fmt.Fprintln(out, "The following steps will be applied:")
		for _, name := range pending {
			_, _ = fmt.Fprintf(out, "  - %s\n", name)
		}
		_, _ = fmt.Fprint(out, "Proceed? [y/N]: ")

		response, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return false, err
		}
		response = strings.ToLower(strings.TrimSpace(response))
		return response == "y" || response == "yes", nil
	})
}
