package build

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	sprig "github.com/go-task/slim-sprig/v3"

	"xcss/misc"
)

// BannerValues are available to banner template.
type BannerValues struct {
	BuildID string
	Version string
	// Files are paths of compiled sources in output order.
	Files []string
	Time  time.Time
}

func parseBanner(text string) (*template.Template, error) {
	if len(strings.TrimSpace(text)) == 0 {
		return nil, nil
	}
	tmpl, err := template.New("banner").Funcs(sprig.FuncMap()).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("unable to parse banner template: %w", err)
	}
	return tmpl, nil
}

// expandBanner renders banner as CSS comment, empty when there is no banner
// or it expands to nothing.
func expandBanner(tmpl *template.Template, id string, sources []*Source, now time.Time) (string, error) {
	if tmpl == nil {
		return "", nil
	}
	values := BannerValues{
		BuildID: id,
		Version: misc.GetVersion(),
		Files:   make([]string, 0, len(sources)),
		Time:    now,
	}
	for _, src := range sources {
		values.Files = append(values.Files, src.Path)
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", fmt.Errorf("unable to expand banner: %w", err)
	}
	text := strings.TrimSpace(buf.String())
	if len(text) == 0 {
		return "", nil
	}
	return "/* " + strings.ReplaceAll(text, "*/", "*_/") + " */", nil
}
