package command

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/refstore/internal/core/domain"
	"github.com/yndnr/refstore/internal/core/service"
)

// recordView is a stored record as printed by get and list.
type recordView struct {
	Key   string `json:"key" yaml:"key"`
	Count uint32 `json:"count" yaml:"count"`
	Size  int    `json:"size" yaml:"size"`
	Value hexBytes `json:"value,omitempty" yaml:"value,omitempty" table:"wide"`
}

// hexBytes prints as hex in YAML. JSON keeps the standard base64 form.
type hexBytes []byte

// MarshalYAML implements yaml.Marshaler.
func (b hexBytes) MarshalYAML() (any, error) {
	return hex.EncodeToString(b), nil
}

// countView is the result of a mutation.
type countView struct {
	Key   string `json:"key" yaml:"key"`
	Count uint32 `json:"count" yaml:"count"`
}

// GetCommand returns the get command.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Show the record stored under a key",
		ArgsUsage: "<key>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "raw",
				Usage: "Write only the stored value bytes to stdout",
			},
		},
		Action: getRecord,
	}
}

func getRecord(c *cli.Context) error {
	key, err := parseKey(c, c.Args().First())
	if err != nil {
		return err
	}

	return openStore(c, func(s *service.RefStore) error {
		rec, found, err := s.GetValue(context.Background(), key)
		if err != nil {
			return err
		}
		if !found {
			return domain.ErrNotFound.WithDetails("key " + displayKey(c, key))
		}

		if c.Bool("raw") {
			_, err := writer(c).Write(rec.Value)
			return err
		}
		return render(c, recordView{
			Key:   displayKey(c, key),
			Count: rec.Count,
			Size:  len(rec.Value),
			Value: rec.Value,
		})
	})
}

// SaveCommand returns the save command.
func SaveCommand() *cli.Command {
	return &cli.Command{
		Name:      "save",
		Usage:     "Add a reference to a value, storing it if the key is new",
		ArgsUsage: "<key> [value|-]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "Read the value from a file",
			},
		},
		Action: saveRecord,
	}
}

func saveRecord(c *cli.Context) error {
	key, err := parseKey(c, c.Args().First())
	if err != nil {
		return err
	}
	value, err := readValue(c)
	if err != nil {
		return err
	}

	return openStore(c, func(s *service.RefStore) error {
		count, err := s.SaveValue(context.Background(), key, value)
		if err != nil {
			return err
		}
		return render(c, countView{Key: displayKey(c, key), Count: count})
	})
}

// readValue takes the value from --file, the second argument, or stdin
// when the argument is "-".
func readValue(c *cli.Context) ([]byte, error) {
	path := c.String("file")
	arg := c.Args().Get(1)

	switch {
	case path != "" && arg != "":
		return nil, errors.New("pass the value as an argument or with --file, not both")
	case path != "":
		value, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read value: %w", err)
		}
		return value, nil
	case arg == "-":
		value, err := io.ReadAll(reader(c))
		if err != nil {
			return nil, fmt.Errorf("read value from stdin: %w", err)
		}
		return value, nil
	case c.Args().Len() < 2:
		return nil, errors.New("value argument is required (use - for stdin or --file)")
	default:
		return []byte(arg), nil
	}
}

// IncRefCommand returns the incref command.
func IncRefCommand() *cli.Command {
	return &cli.Command{
		Name:      "incref",
		Usage:     "Add a reference to an existing record",
		ArgsUsage: "<key>",
		Action: func(c *cli.Context) error {
			return mutate(c, (*service.RefStore).IncrementReference)
		},
	}
}

// DecRefCommand returns the decref command.
func DecRefCommand() *cli.Command {
	return &cli.Command{
		Name:      "decref",
		Aliases:   []string{"delete"},
		Usage:     "Release a reference, removing the record at zero",
		ArgsUsage: "<key>",
		Action: func(c *cli.Context) error {
			return mutate(c, (*service.RefStore).DeleteValue)
		},
	}
}

func mutate(c *cli.Context, op func(*service.RefStore, context.Context, []byte) (uint32, error)) error {
	key, err := parseKey(c, c.Args().First())
	if err != nil {
		return err
	}

	return openStore(c, func(s *service.RefStore) error {
		count, err := op(s, context.Background(), key)
		if err != nil {
			return err
		}
		return render(c, countView{Key: displayKey(c, key), Count: count})
	})
}

// ListCommand returns the list command.
func ListCommand() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List live records",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "prefix",
				Usage: "Only keys starting with this prefix (hex unless --raw-key)",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Stop after this many records (0 for all)",
			},
		},
		Action: listRecords,
	}
}

func listRecords(c *cli.Context) error {
	var prefix []byte
	if p := c.String("prefix"); p != "" {
		var err error
		if prefix, err = parseKey(c, p); err != nil {
			return err
		}
	}
	limit := c.Int("limit")

	return openStore(c, func(s *service.RefStore) error {
		rows := []recordView{}
		err := s.Scan(context.Background(), prefix, func(key []byte, rec domain.Record) bool {
			rows = append(rows, recordView{
				Key:   displayKey(c, key),
				Count: rec.Count,
				Size:  len(rec.Value),
				Value: rec.Value,
			})
			return limit <= 0 || len(rows) < limit
		})
		if err != nil {
			return err
		}
		return render(c, rows)
	})
}
