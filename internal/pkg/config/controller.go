package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gethiox/n64pad/internal/pkg/logger"
	"github.com/gethiox/n64pad/internal/pkg/mapping"
	"github.com/go-ini/ini"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

var ErrNoSection = errors.New("controller section not found")

const SectionPrefix = "controller_"

func SectionName(port int) string {
	return fmt.Sprintf("%s%d", SectionPrefix, port)
}

// Changes lists keys the reconciliation had to add or rewrite.
type Changes struct {
	Added []string
	Fixed []string
}

func (c Changes) Dirty() bool {
	return len(c.Added) > 0 || len(c.Fixed) > 0
}

// File is a controller config file. Sections and keys it does not know are kept as they are.
type File struct {
	path string

	mutex sync.Mutex
	ini   *ini.File
}

// Open reads the config file, a missing file is treated as empty.
func Open(path string) (*File, error) {
	f := &File{path: path}
	err := f.Reload()
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Reload discards in-memory changes and reads the file again.
func (f *File) Reload() error {
	cfg, err := load(f.path)
	if err != nil {
		return err
	}
	f.mutex.Lock()
	f.ini = cfg
	f.mutex.Unlock()
	return nil
}

func load(path string) (*ini.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("cannot read config file: %w", err)
		}
		log.Info("controller config does not exist, starting from defaults", zap.String("path", path), logger.Info)
		return ini.Empty(), nil
	}

	cfg, err := ini.Load(data)
	if err != nil {
		return nil, fmt.Errorf("cannot parse config file: %w", err)
	}
	return cfg, nil
}

// Controller returns the profile of the given port. Missing keys are added with their default
// value and unparsable ones are reset, the returned Changes tell if the file needs saving.
func (f *File) Controller(port int) (mapping.Profile, Changes) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	name := SectionName(port)
	sec, err := f.ini.GetSection(name)
	if err != nil {
		sec = f.ini.Section(name)
	}

	p := mapping.DefaultProfile()
	changes := reconcile(sec, &p)
	return p, changes
}

// Lookup returns the profile of the given port without touching the file content.
func (f *File) Lookup(port int) (mapping.Profile, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	sec, err := f.ini.GetSection(SectionName(port))
	if err != nil {
		return mapping.Profile{}, fmt.Errorf("%w: %s", ErrNoSection, SectionName(port))
	}

	// reconcile a detached copy, the live section stays untouched
	tmp := ini.Empty().Section(sec.Name())
	for _, k := range sec.Keys() {
		tmp.Key(k.Name()).SetValue(k.String())
	}
	p := mapping.DefaultProfile()
	reconcile(tmp, &p)
	return p, nil
}

// SetController stores every key of the profile in the port's section.
func (f *File) SetController(port int, p mapping.Profile) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	sec := f.ini.Section(SectionName(port))
	for _, fl := range schema {
		sec.Key(fl.key).SetValue(fl.write(p))
	}
}

// Save writes the file through a temporary file renamed over the old one,
// readers never see a truncated config.
func (f *File) Save() error {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	dir := filepath.Dir(f.path)
	err := os.MkdirAll(dir, 0o777)
	if err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	mode := os.FileMode(0o644)
	if info, err := os.Stat(f.path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+".*")
	if err != nil {
		return fmt.Errorf("cannot create temporary config file: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	_, err = f.ini.WriteTo(tmp)
	if err == nil {
		err = tmp.Chmod(mode)
	}
	if err == nil {
		err = tmp.Sync()
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("cannot save config file: %w", err)
	}

	err = os.Rename(tmp.Name(), f.path)
	if err != nil {
		return fmt.Errorf("cannot save config file: %w", err)
	}
	log.Info("controller config saved", zap.String("path", f.path), logger.Debug)
	return nil
}

func reconcile(sec *ini.Section, p *mapping.Profile) Changes {
	var changes Changes
	for _, fl := range schema {
		if !sec.HasKey(fl.key) {
			sec.Key(fl.key).SetValue(fl.write(*p))
			changes.Added = append(changes.Added, fl.key)
			continue
		}

		k := sec.Key(fl.key)
		fixed, err := fl.read(k, p)
		if err != nil {
			log.Info(fmt.Sprintf("invalid value, restoring default: %v", err),
				zap.String("section", sec.Name()), zap.String("key", fl.key), zap.String("value", k.String()),
				logger.Warning,
			)
			fixed = true
		}
		if fixed {
			k.SetValue(fl.write(*p))
			changes.Fixed = append(changes.Fixed, fl.key)
		}
	}
	return changes
}

// Load reads the profile of a port and writes the file back when keys had to be added or fixed.
func Load(path string, port int) (mapping.Profile, error) {
	f, err := Open(path)
	if err != nil {
		return mapping.Profile{}, err
	}

	p, changes := f.Controller(port)
	if changes.Dirty() {
		log.Info("controller config updated",
			zap.String("path", path), zap.Int("added", len(changes.Added)), zap.Int("fixed", len(changes.Fixed)),
			logger.Info,
		)
		err = f.Save()
		if err != nil {
			return p, err
		}
	}
	return p, nil
}

// Read returns the profile of a port without writing anything back. A file without the port's
// section, like one caught in the middle of being rewritten, returns ErrNoSection.
func Read(path string, port int) (mapping.Profile, error) {
	f, err := Open(path)
	if err != nil {
		return mapping.Profile{}, err
	}
	return f.Lookup(port)
}

// Save stores the profile of a port, other content of the file is preserved.
func Save(path string, port int, p mapping.Profile) error {
	f, err := Open(path)
	if err != nil {
		return err
	}
	f.SetController(port, p)
	return f.Save()
}
