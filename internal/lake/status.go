package lake

import (
	"fmt"
	"io"
	"sort"

	"github.com/huangsam/gitlake/schema"
)

// PrintLakeStatus prints lake status information.
func PrintLakeStatus(w io.Writer, status schema.LakeStatus) {
	_, _ = fmt.Fprintf(w, "Lake Backend: %s\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	_, _ = fmt.Fprintf(w, "Total Rows: %d\n", status.TotalRows)
	if len(status.RepoCounts) == 0 {
		return
	}
	repos := make([]string, 0, len(status.RepoCounts))
	for repo := range status.RepoCounts {
		repos = append(repos, repo)
	}
	sort.Strings(repos)
	_, _ = fmt.Fprintln(w, "Repositories:")
	for _, repo := range repos {
		_, _ = fmt.Fprintf(w, "  %s: %d rows\n", repo, status.RepoCounts[repo])
	}
}
