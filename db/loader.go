package db

import (
	"errors"
	"fmt"
	"sort"

	"arsenaldb/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CommandSection is the only top-level key of a catalogue the loader reads.
const CommandSection = "command"

// Field names of an entry definition.
const (
	NameExeField   = "name_exe"
	CmdTypesField  = "cmd_types"
	ShortDescField = "short_desc"
	DetailsField   = "details"
	ArgsField      = "args"
	ExamplesField  = "examples"
)

var (
	ErrStructure = errors.New("unexpected document structure")
	ErrFieldType = errors.New("unsupported field type")
)

// StructuralError reports a catalogue node that is not shaped the way the
// loader needs it, e.g. a command entry that is not a table.
type StructuralError struct {
	Path string
	Want string
	Got  any
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("%s: %s must be %s, got %T", ErrStructure, e.Path, e.Want, e.Got)
}

func (e *StructuralError) Unwrap() error { return ErrStructure }

// FieldError reports an entry field holding a list or table where a single
// TEXT value is expected.
type FieldError struct {
	Entry string
	Field string
	Value any
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: command %q field %q holds %T", ErrFieldType, e.Entry, e.Field, e.Value)
}

func (e *FieldError) Unwrap() error { return ErrFieldType }

// LoadResult counts the rows inserted per table by a single load.
type LoadResult struct {
	Commands int
	Types    int
	Args     int
	Examples int
}

// entry is the flattened form of one command definition.
type entry struct {
	Name      string
	NameExe   string
	CmdTypes  string
	ShortDesc string
	Details   string
	Args      string
	Examples  []string
}

// LoadOption configures LoadCommands.
type LoadOption func(*loadConfig)

type loadConfig struct {
	order []string
}

// WithEntryOrder inserts the named entries first, in the given order, so that
// generated ids follow the source file. Entries it does not name are inserted
// afterwards in name order.
func WithEntryOrder(names []string) LoadOption {
	return func(c *loadConfig) {
		c.order = names
	}
}

// LoadCommands inserts every entry found under the "command" section of doc.
// Other top-level sections are ignored. All inserts share one transaction:
// either the whole document is committed or nothing is.
func LoadCommands(db *gorm.DB, doc map[string]any, log *zap.SugaredLogger, opts ...LoadOption) (LoadResult, error) {
	var result LoadResult
	var cfg loadConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	for section := range doc {
		if section != CommandSection {
			log.Debugf("loader: skipping unrecognized section %q", section)
		}
	}

	raw, ok := doc[CommandSection]
	if !ok {
		log.Infof("loader: no %q section found, nothing to insert", CommandSection)
		return result, nil
	}
	entries, err := decodeEntries(raw, cfg.order)
	if err != nil {
		return result, err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		var loaded LoadResult
		for _, e := range entries {
			if err := insertEntry(tx, e, &loaded); err != nil {
				return err
			}
			log.Debugf("loader: inserted command %q (%s) with %d example(s)", e.Name, e.NameExe, len(e.Examples))
		}
		result = loaded
		return nil
	})
	if err != nil {
		return LoadResult{}, err
	}

	log.Infof("loader: committed %d command(s), %d example(s)", result.Commands, result.Examples)
	return result, nil
}

// insertEntry writes the parent row first so its generated id is known before
// any dependent row references it.
func insertEntry(tx *gorm.DB, e entry, loaded *LoadResult) error {
	cmd := model.Command{
		Name:      e.Name,
		NameExe:   e.NameExe,
		ShortDesc: e.ShortDesc,
		Details:   e.Details,
	}
	if err := tx.Create(&cmd).Error; err != nil {
		return fmt.Errorf("loader: inserting command %q: %w", e.Name, err)
	}
	loaded.Commands++

	if err := tx.Create(&model.CommandType{CommandID: cmd.ID, Type: e.CmdTypes}).Error; err != nil {
		return fmt.Errorf("loader: inserting types of %q: %w", e.Name, err)
	}
	loaded.Types++

	if err := tx.Create(&model.CommandArgs{CommandID: cmd.ID, Args: e.Args}).Error; err != nil {
		return fmt.Errorf("loader: inserting args of %q: %w", e.Name, err)
	}
	loaded.Args++

	for _, example := range e.Examples {
		if err := tx.Create(&model.CommandExample{CommandID: cmd.ID, Example: example}).Error; err != nil {
			return fmt.Errorf("loader: inserting example of %q: %w", e.Name, err)
		}
		loaded.Examples++
	}
	return nil
}

// decodeEntries flattens the command section. Entries listed in order come
// first; the rest follow sorted by name so ids stay deterministic.
func decodeEntries(raw any, order []string) ([]entry, error) {
	section, ok := raw.(map[string]any)
	if !ok {
		return nil, &StructuralError{Path: CommandSection, Want: "a table of commands", Got: raw}
	}

	names := make([]string, 0, len(section))
	placed := make(map[string]bool, len(section))
	for _, name := range order {
		if _, ok := section[name]; ok && !placed[name] {
			placed[name] = true
			names = append(names, name)
		}
	}
	var rest []string
	for name := range section {
		if !placed[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	names = append(names, rest...)

	entries := make([]entry, 0, len(names))
	for _, name := range names {
		def, ok := section[name].(map[string]any)
		if !ok {
			return nil, &StructuralError{Path: CommandSection + "." + name, Want: "a table", Got: section[name]}
		}
		e, err := decodeEntry(name, def)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func decodeEntry(name string, def map[string]any) (entry, error) {
	e := entry{Name: name}
	var err error
	for field, dst := range map[string]*string{
		NameExeField:   &e.NameExe,
		CmdTypesField:  &e.CmdTypes,
		ShortDescField: &e.ShortDesc,
		DetailsField:   &e.Details,
		ArgsField:      &e.Args,
	} {
		if *dst, err = stringField(name, field, def[field]); err != nil {
			return entry{}, err
		}
	}
	if e.Examples, err = examplesField(name, def[ExamplesField]); err != nil {
		return entry{}, err
	}
	return e, nil
}

// stringField treats an absent (or null) value as the empty string. Other
// scalars are stored as text the way SQLite's TEXT affinity would store them;
// only lists and tables are refused.
func stringField(entryName, field string, v any) (string, error) {
	switch s := v.(type) {
	case nil:
		return "", nil
	case string:
		return s, nil
	case bool:
		if s {
			return "1", nil
		}
		return "0", nil
	case map[string]any, []any, []string:
		return "", &FieldError{Entry: entryName, Field: field, Value: v}
	}
	return fmt.Sprint(v), nil
}

func examplesField(entryName string, v any) ([]string, error) {
	switch list := v.(type) {
	case nil:
		return nil, nil
	case []string:
		return list, nil
	case []any:
		examples := make([]string, 0, len(list))
		for i, item := range list {
			s, err := stringField(entryName, fmt.Sprintf("%s[%d]", ExamplesField, i), item)
			if err != nil {
				return nil, err
			}
			examples = append(examples, s)
		}
		return examples, nil
	}
	return nil, &FieldError{Entry: entryName, Field: ExamplesField, Value: v}
}
