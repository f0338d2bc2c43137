package parsing

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	"gopkg.in/yaml.v3"
)

type Config map[string]*cfgVal

// NewConfig creates a new configuration object primed with all the
// default values expected by the domain and the parsers it runs.
func NewConfig() *Config {
	m := make(Config)
	// log rule activations through the trace logger
	m.SetBool("parser.trace", false)
	// apply the skip rule of grammars between lexemes
	m.SetBool("parser.skip", true)
	// max number of nested rule activations, zero means unlimited
	m.SetInt("parser.max_depth", 10000)
	// commonlog verbosity: 0 is notice, 1 info, 2 debug
	m.SetInt("log.verbosity", 0)
	// write logs to this file instead of stderr
	m.SetString("log.path", "")
	return &m
}

// LoadConfig reads the TOML or YAML file at `path` on top of the
// default configuration.  Nested tables are flattened into dotted
// keys, so `[parser]\nmax_depth = 20` sets `parser.max_depth`.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	raw := map[string]any{}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, &raw)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	default:
		return nil, fmt.Errorf("unknown configuration format `%s`", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("can't read configuration %s: %w", path, err)
	}
	cfg := NewConfig()
	if err := cfg.merge("", raw); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) merge(prefix string, raw map[string]any) error {
	for k, v := range raw {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}
		var err error
		switch val := v.(type) {
		case map[string]any:
			err = c.merge(path, val)
		case bool:
			err = c.setChecked(path, cfgValType_Bool, func() { c.SetBool(path, val) })
		case int:
			err = c.setChecked(path, cfgValType_Int, func() { c.SetInt(path, val) })
		case int64:
			err = c.setChecked(path, cfgValType_Int, func() { c.SetInt(path, int(val)) })
		case string:
			err = c.setChecked(path, cfgValType_String, func() { c.SetString(path, val) })
		default:
			err = fmt.Errorf("setting `%s` has unsupported type %T", path, v)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// setChecked refuses to change the type of a known setting
func (c *Config) setChecked(path string, vt cfgValType, set func()) error {
	if old, ok := (*c)[path]; ok && old.typ != vt {
		return fmt.Errorf("setting `%s` must be %s, not %s", path, old.typ, vt)
	}
	set()
	return nil
}

// ConfigureLogging applies the `log.*` settings to commonlog
func ConfigureLogging(cfg *Config) {
	if path := cfg.GetString("log.path"); path != "" {
		commonlog.Configure(cfg.GetInt("log.verbosity"), &path)
		return
	}
	commonlog.Configure(cfg.GetInt("log.verbosity"), nil)
}

// String lists every setting, sorted by path, one per line
func (c *Config) String() string {
	keys := make([]string, 0, len(*c))
	width := 0
	for k := range *c {
		keys = append(keys, k)
		width = max(width, len(k))
	}
	sort.Strings(keys)

	var s strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&s, "%s%s : %s\n", k, strings.Repeat(" ", width-len(k)), (*c)[k].String())
	}
	return strings.TrimSuffix(s.String(), "\n")
}

type cfgValType int

const (
	cfgValType_Undefined cfgValType = iota
	cfgValType_Bool
	cfgValType_Int
	cfgValType_String
)

func (vt cfgValType) String() string {
	return map[cfgValType]string{
		cfgValType_Undefined: "undefined",
		cfgValType_Bool:      "bool",
		cfgValType_Int:       "int",
		cfgValType_String:    "string",
	}[vt]
}

type cfgVal struct {
	typ      cfgValType
	asBool   bool
	asInt    int
	asString string
}

// assignType is mostly for preventing programming errors
func (v *cfgVal) assignType(path string, vt cfgValType) {
	if v.typ != vt && v.typ != cfgValType_Undefined {
		panic(fmt.Sprintf("can't assign %s to setting `%s` of type %s", vt, path, v.typ))
	}
	v.typ = vt
}

func (v *cfgVal) checkType(path string, vt cfgValType) {
	if v.typ != vt {
		panic(fmt.Sprintf("can't read setting `%s` of type %s as %s", path, v.typ, vt))
	}
}

func (v *cfgVal) String() string {
	switch v.typ {
	case cfgValType_Bool:
		return fmt.Sprintf("%t (bool)", v.asBool)
	case cfgValType_Int:
		return fmt.Sprintf("%d (int)", v.asInt)
	case cfgValType_String:
		return fmt.Sprintf("%s (string)", v.asString)
	case cfgValType_Undefined:
		return "(undefined)"
	default:
		panic(fmt.Sprintf("unknown cfgVal type: %v", v.typ))
	}
}

// slot returns the value at `path`, creating an untyped one if the
// setting is new
func (c *Config) slot(path string, vt cfgValType) *cfgVal {
	v, ok := (*c)[path]
	if !ok {
		v = &cfgVal{}
		(*c)[path] = v
	}
	v.assignType(path, vt)
	return v
}

func (c *Config) SetBool(path string, v bool)     { c.slot(path, cfgValType_Bool).asBool = v }
func (c *Config) SetInt(path string, v int)       { c.slot(path, cfgValType_Int).asInt = v }
func (c *Config) SetString(path string, v string) { c.slot(path, cfgValType_String).asString = v }

func (c *Config) GetBool(path string) bool {
	if val, ok := (*c)[path]; ok {
		val.checkType(path, cfgValType_Bool)
		return val.asBool
	}
	panic(fmt.Sprintf("bool setting `%s` does not exist", path))
}

func (c *Config) GetInt(path string) int {
	if val, ok := (*c)[path]; ok {
		val.checkType(path, cfgValType_Int)
		return val.asInt
	}
	panic(fmt.Sprintf("int setting `%s` does not exist", path))
}

func (c *Config) GetString(path string) string {
	if val, ok := (*c)[path]; ok {
		val.checkType(path, cfgValType_String)
		return val.asString
	}
	panic(fmt.Sprintf("string setting `%s` does not exist", path))
}
