package prompts

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"

	"voice-relay/internal/application/port/output"
)

const DefaultVersion = "v1"

//go:embed templates
var embedded embed.FS

// TemplateIDs lists the templates every set must provide.
var TemplateIDs = []output.PromptID{
	output.PromptDescribe,
	output.PromptCommand,
	output.PromptElement,
}

// LoadTemplates reads the raw template texts of one version, from dir when
// set and from the embedded sets otherwise.
func LoadTemplates(version, dir string) (map[output.PromptID]string, error) {
	if version == "" {
		version = DefaultVersion
	}

	var fsys fs.FS
	if dir != "" {
		fsys = os.DirFS(dir)
	} else {
		sub, err := fs.Sub(embedded, "templates")
		if err != nil {
			return nil, err
		}
		fsys = sub
	}

	texts := make(map[output.PromptID]string, len(TemplateIDs))
	for _, id := range TemplateIDs {
		data, err := fs.ReadFile(fsys, path.Join(version, string(id)+".txt"))
		if err != nil {
			return nil, fmt.Errorf("load prompt %s/%s: %w", version, id, err)
		}
		texts[id] = string(data)
	}
	return texts, nil
}
