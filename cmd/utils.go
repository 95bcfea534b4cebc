package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/chukul/credctl/internal"
	"golang.org/x/term"
)

func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func stderrIsTerminal() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}

// describeError renders a classified failure for the terminal.
func describeError(err error) string {
	switch internal.KindOf(err) {
	case internal.KindNotFound:
		return fmt.Sprintf("%v (run 'credctl list' to see stored profiles)", err)
	case internal.KindStoreUnavailable:
		return fmt.Sprintf("%v (check that the credentials file is readable and well formed)", err)
	case internal.KindAuthRejected:
		return fmt.Sprintf("%v (the keys may be expired, revoked or mistyped)", err)
	case internal.KindNetworkFailure:
		return fmt.Sprintf("%v (check your connection or raise --timeout)", err)
	}
	return err.Error()
}

// confirm asks a yes/no question on stderr and reads the answer from stdin.
func confirm(question string) bool {
	fmt.Fprintf(os.Stderr, "%s [y/N]: ", question)
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "y", "yes":
		return true
	}
	return false
}
