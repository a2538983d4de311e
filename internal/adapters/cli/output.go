package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/andrescamacho/mediator-go/internal/application/mediator"
	"github.com/andrescamacho/mediator-go/internal/application/user/queries"
)

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printUsers(w io.Writer, users []*queries.UserDTO) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tCREATED")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s %s\t%s\t%s\n", u.ID, u.FirstName, u.LastName, u.Email, u.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return tw.Flush()
}

// describeError expands validation failures into one line per field
func describeError(err error) string {
	var failed *mediator.ValidationFailedError
	if !errors.As(err, &failed) {
		return err.Error()
	}

	var b strings.Builder
	b.WriteString("validation failed:")
	for _, fe := range failed.Errors {
		fmt.Fprintf(&b, "\n  - %s", fe)
	}
	return b.String()
}
