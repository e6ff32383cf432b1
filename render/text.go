package render

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/broady/restdoc"
)

// Text writes one line per endpoint: the display string, the request URL
// preview and the Go method that serves it. Resources are separated by a
// blank line.
//
//	/items/{id} GET    /items/{id}?sort    Items.Get
func Text(w io.Writer, resources []*restdoc.Resource) error {
	tw := tabwriter.NewWriter(w, 0, 4, 4, ' ', 0)
	for i, res := range resources {
		if i > 0 {
			fmt.Fprintln(tw)
		}
		for _, ep := range res.Endpoints() {
			fmt.Fprintf(tw, "%s\t%s\t%s.%s\n", ep.String(), ep.URL(), res.Name(), ep.Method())
		}
	}
	return tw.Flush()
}
