package prompts

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"text/template"

	"gopkg.in/yaml.v3"
)

const defaultPromptsPath = "prompts.yaml"

//go:embed default.yaml
var defaultPrompts []byte

type Prompts struct {
	Post    PostPrompts    `yaml:"post"`
	Comment CommentPrompts `yaml:"comment"`
	Node    NodePrompts    `yaml:"node"`
	Image   ImagePrompts   `yaml:"image"`
}

type PostPrompts struct {
	Manual    string `yaml:"manual"`
	Automatic string `yaml:"automatic"`
}

type CommentPrompts struct {
	Praise string `yaml:"praise"`
}

type NodePrompts struct {
	TitleManual    string `yaml:"title_manual"`
	TitleAutomatic string `yaml:"title_automatic"`
	Description    string `yaml:"description"`
}

type ImagePrompts struct {
	PostManual    string `yaml:"post_manual"`
	PostAutomatic string `yaml:"post_automatic"`
	Node          string `yaml:"node"`
}

// Params is the data every template is rendered with. Fields a template does
// not reference are ignored.
type Params struct {
	CompanyName        string
	CompanyDescription string
	Summary            string
	Kind               string
	Title              string
}

// Article returns the indefinite article for Kind.
func (p Params) Article() string {
	if p.Kind == "" {
		return "a"
	}
	switch p.Kind[0] {
	case 'a', 'e', 'i', 'o', 'u':
		return "an"
	}
	return "a"
}

// Load reads the prompts file at path, prompts.yaml when empty, falling back
// to the built-in prompts only when the file does not exist.
func Load(path string) (*Prompts, error) {
	if path == "" {
		path = defaultPromptsPath
	}
	p, err := LoadFrom(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default()
	}
	return p, err
}

func LoadFrom(path string) (*Prompts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompts file: %w", err)
	}
	return parse(data)
}

// Default returns the built-in prompts.
func Default() (*Prompts, error) {
	return parse(defaultPrompts)
}

func parse(data []byte) (*Prompts, error) {
	p, err := parseDefaults()
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("failed to parse prompts file: %w", err)
	}
	return p, nil
}

// parseDefaults seeds a Prompts so a partial file only overrides what it sets.
func parseDefaults() (*Prompts, error) {
	var p Prompts
	if err := yaml.Unmarshal(defaultPrompts, &p); err != nil {
		return nil, fmt.Errorf("failed to parse default prompts: %w", err)
	}
	return &p, nil
}

func (p *Prompts) RenderPost(automatic bool, params Params) (string, error) {
	if automatic {
		return render(p.Post.Automatic, params)
	}
	return render(p.Post.Manual, params)
}

func (p *Prompts) RenderPostImage(automatic bool, params Params) (string, error) {
	if automatic {
		return render(p.Image.PostAutomatic, params)
	}
	return render(p.Image.PostManual, params)
}

func (p *Prompts) RenderComment(params Params) (string, error) {
	return render(p.Comment.Praise, params)
}

func (p *Prompts) RenderNodeTitle(automatic bool, params Params) (string, error) {
	if automatic {
		return render(p.Node.TitleAutomatic, params)
	}
	return render(p.Node.TitleManual, params)
}

func (p *Prompts) RenderNodeDescription(params Params) (string, error) {
	return render(p.Node.Description, params)
}

func (p *Prompts) RenderNodeImage(params Params) (string, error) {
	return render(p.Image.Node, params)
}

func render(tmpl string, data any) (string, error) {
	t, err := template.New("prompt").Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}
