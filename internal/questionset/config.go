// Package questionset loads per-set configuration and discovers the sets
// under a directory.
package questionset

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/qadigest/internal/spacedrep"
	"github.com/abhisek/qadigest/internal/validate"
)

// DefaultNumQuestions is how many questions a digest carries when the set
// does not say.
const DefaultNumQuestions = 2

// Config file names, in lookup order.
const (
	JSONConfigName = "config.json"
	YAMLConfigName = "config.yaml"
)

// ErrInvalidConfig marks a set whose configuration is missing, unreadable
// or does not conform to the schema.
var ErrInvalidConfig = errors.New("invalid question set config")

const configSchema = `{
	"type": "object",
	"required": ["internal_name", "qa_pairs_file"],
	"properties": {
		"internal_name": {"type": "string", "pattern": "^[A-Za-z0-9][A-Za-z0-9._-]*$"},
		"subject_title": {"type": "string"},
		"keys_are_question": {"$ref": "#/$defs/flag"},
		"keys_are_questions": {"$ref": "#/$defs/flag"},
		"qa_pairs_file": {"type": "string", "minLength": 1},
		"num_questions": {"type": "integer", "minimum": 1},
		"question_algorithm": {"type": "string"},
		"paused": {"$ref": "#/$defs/flag"}
	},
	"$defs": {
		"flag": {
			"anyOf": [
				{"type": "boolean"},
				{"type": "string", "enum": ["true", "false", "True", "False"]}
			]
		}
	}
}`

// Flag is a boolean that also accepts the strings "true" and "false".
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = Flag(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("flag must be a boolean or \"true\"/\"false\": %s", data)
	}
	*f = Flag(strings.EqualFold(s, "true"))
	return nil
}

// Config describes one question set.
type Config struct {
	InternalName      string `json:"internal_name"`
	SubjectTitle      string `json:"subject_title"`
	KeysAreQuestion   bool   `json:"keys_are_question"`
	QAPairsFile       string `json:"qa_pairs_file"`
	NumQuestions      int    `json:"num_questions"`
	QuestionAlgorithm string `json:"question_algorithm"`
	Paused            bool   `json:"paused"`
}

// rawConfig mirrors the on-disk document, including the legacy
// keys_are_questions spelling.
type rawConfig struct {
	InternalName      string `json:"internal_name"`
	SubjectTitle      string `json:"subject_title"`
	KeysAreQuestion   *Flag  `json:"keys_are_question"`
	KeysAreQuestions  *Flag  `json:"keys_are_questions"`
	QAPairsFile       string `json:"qa_pairs_file"`
	NumQuestions      *int   `json:"num_questions"`
	QuestionAlgorithm string `json:"question_algorithm"`
	Paused            *Flag  `json:"paused"`
}

// ParseJSON validates and decodes a JSON set config, applying defaults.
func ParseJSON(data []byte) (Config, error) {
	if err := validate.JSON("question-set-config", configSchema, data); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	var raw rawConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return raw.resolve(), nil
}

// ParseYAML decodes a YAML set config by way of its JSON form, so both
// formats share one schema.
func ParseYAML(data []byte) (Config, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	asJSON, err := json.Marshal(doc)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return ParseJSON(asJSON)
}

func (r rawConfig) resolve() Config {
	c := Config{
		InternalName:      r.InternalName,
		SubjectTitle:      r.SubjectTitle,
		QAPairsFile:       r.QAPairsFile,
		NumQuestions:      DefaultNumQuestions,
		QuestionAlgorithm: r.QuestionAlgorithm,
	}
	if c.SubjectTitle == "" {
		c.SubjectTitle = c.InternalName
	}
	if r.NumQuestions != nil {
		c.NumQuestions = *r.NumQuestions
	}
	if c.QuestionAlgorithm == "" {
		c.QuestionAlgorithm = string(spacedrep.DefaultAlgorithm)
	}
	switch {
	case r.KeysAreQuestion != nil:
		c.KeysAreQuestion = bool(*r.KeysAreQuestion)
	case r.KeysAreQuestions != nil:
		c.KeysAreQuestion = bool(*r.KeysAreQuestions)
	}
	if r.Paused != nil {
		c.Paused = bool(*r.Paused)
	}
	return c
}

// Load reads the config of the set stored in dir. config.json wins over
// config.yaml when both exist.
func Load(dir string) (Config, error) {
	for _, name := range []string{JSONConfigName, YAMLConfigName} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return Config{}, fmt.Errorf("%w: read %s: %v", ErrInvalidConfig, name, err)
		}
		if name == YAMLConfigName {
			return ParseYAML(data)
		}
		return ParseJSON(data)
	}
	return Config{}, fmt.Errorf("%w: no %s or %s in %s", ErrInvalidConfig, JSONConfigName, YAMLConfigName, dir)
}
