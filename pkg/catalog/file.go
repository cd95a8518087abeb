package catalog

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Read decodes a snapshot file.
func Read(r io.Reader) (*Snapshot, error) {
	var data Data
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&data); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	if err := validate(data); err != nil {
		return nil, err
	}
	return NewSnapshot(data), nil
}

// LoadFile reads the snapshot file at path.
func LoadFile(path string) (*Snapshot, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	snap, err := Read(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return snap, nil
}

// Write encodes snap as YAML.
func Write(w io.Writer, snap *Snapshot) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(snap.Data()); err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	return enc.Close()
}

// SaveFile writes snap to path, replacing the file atomically.
func SaveFile(path string, snap *Snapshot) error {
	var buf bytes.Buffer
	if err := Write(&buf, snap); err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	return nil
}

func validate(data Data) error {
	for i, t := range data.Tables {
		if t.Name == "" {
			return fmt.Errorf("table %d: name is required", i)
		}
		for j, c := range t.Columns {
			if c.Name == "" {
				return fmt.Errorf("table %s: column %d: name is required", t.Name, j)
			}
		}
	}
	for i, f := range data.Functions {
		if f.Name == "" {
			return fmt.Errorf("function %d: name is required", i)
		}
	}
	return nil
}
