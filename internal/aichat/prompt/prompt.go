// Package prompt renders TOML prompt templates into the single input text the
// AI service accepts.
//
// A template file holds a system and a user part:
//
//	system = "You are a reviewer. Answer in {{lang}}."
//	user = "Review this: {{input}}"
//
// {{input}} is replaced by the message; any other {{key}} comes from a
// key:value argument.
package prompt

import (
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// InputKey is the placeholder filled with the user's message
const InputKey = "input"

// Template is the content of a prompt file
type Template struct {
	System string `toml:"system"`
	User   string `toml:"user"`
}

// Load decodes a prompt file. Unknown keys are rejected so that typos do not
// silently drop part of a prompt.
func Load(path string) (*Template, error) {
	var tmpl Template
	md, err := toml.DecodeFile(path, &tmpl)
	if err != nil {
		return nil, fmt.Errorf("error decoding prompt file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("unknown keys in prompt file %s: %s", path, strings.Join(keys, ", "))
	}
	return &tmpl, nil
}

// Render fills the placeholders and joins both parts.
// An empty user part stands for the message itself; without a system part
// only the user part is returned.
func (t *Template) Render(input string, vars map[string]string) string {
	values := make(map[string]string, len(vars)+1)
	for k, v := range vars {
		values[k] = v
	}
	values[InputKey] = input

	user := t.User
	if strings.TrimSpace(user) == "" {
		user = "{{" + InputKey + "}}"
	}
	user = substitute(user, values)
	if strings.TrimSpace(t.System) == "" {
		return user
	}
	return fmt.Sprintf("System: %s\n\nUser: %s", substitute(t.System, values), user)
}

// substitute replaces {{key}} occurrences in a single pass, so substituted
// values are never expanded again
func substitute(text string, values map[string]string) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		pairs = append(pairs, "{{"+k+"}}", values[k])
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

// ParseArgs turns key:value arguments into template variables.
// Values may contain escaped colons (\:) and surrounding quotes are removed.
func ParseArgs(args []string) (map[string]string, error) {
	vars := make(map[string]string, len(args))
	for _, arg := range args {
		arg = strings.TrimSpace(arg)
		if len(arg) >= 2 && strings.HasPrefix(arg, `"`) && strings.HasSuffix(arg, `"`) {
			arg = arg[1 : len(arg)-1]
		}

		key, value, ok := strings.Cut(arg, ":")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid argument %q, expected key:value", arg)
		}
		if key == InputKey {
			return nil, fmt.Errorf("%q is reserved for the message and cannot be passed as an argument", InputKey)
		}

		value = strings.TrimSpace(value)
		value = strings.ReplaceAll(value, `\:`, ":")
		value = strings.ReplaceAll(value, `\"`, `"`)
		vars[key] = value
	}
	return vars, nil
}
