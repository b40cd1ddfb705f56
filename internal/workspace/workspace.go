// Package workspace ties the language documents of one dataset to a
// storage gateway: loading, saving with version checks, merging, CSV
// exports and image uploads.
package workspace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/dgallion1/faqdesk/internal/codec"
	"github.com/dgallion1/faqdesk/internal/config"
	"github.com/dgallion1/faqdesk/internal/exchange"
	"github.com/dgallion1/faqdesk/internal/faq"
	"github.com/dgallion1/faqdesk/internal/merge"
	"github.com/dgallion1/faqdesk/internal/richtext"
	"github.com/dgallion1/faqdesk/internal/storage"
)

// Options is the dataset layout inside the store.
type Options struct {
	Languages []string
	DataDir   string
	ImageDir  string
	ExportDir string
}

// OptionsFromConfig picks the layout settings out of cfg.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		Languages: cfg.Languages,
		DataDir:   cfg.DataDir,
		ImageDir:  cfg.ImageDir,
		ExportDir: cfg.ExportDir,
	}
}

type Workspace struct {
	store storage.Gateway
	opts  Options
	log   *slog.Logger
	now   func() time.Time
}

func New(store storage.Gateway, opts Options, log *slog.Logger) *Workspace {
	return &Workspace{store: store, opts: opts, log: log, now: time.Now}
}

// Loaded is a decoded language document together with the version token
// it was read at. An empty Version means the document is not stored yet.
type Loaded struct {
	Lang    string
	VarName string
	Doc     *faq.Document
	Version string
}

// Languages returns the configured languages in order.
func (w *Workspace) Languages() []string {
	return append([]string(nil), w.opts.Languages...)
}

// Configured reports whether lang is one of the configured languages.
func (w *Workspace) Configured(lang string) bool {
	for _, l := range w.opts.Languages {
		if l == lang {
			return true
		}
	}
	return false
}

func (w *Workspace) DocumentPath(lang string) string {
	return path.Join(w.opts.DataDir, "data."+lang+".js")
}

// Load reads and decodes the document for lang. A missing document wraps
// storage.ErrNotFound; an undecodable one returns the *faq.FormatError.
func (w *Workspace) Load(ctx context.Context, lang string) (*Loaded, error) {
	blob, err := w.store.Get(ctx, w.DocumentPath(lang))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", lang, err)
	}
	varName, doc, err := codec.Decode(string(blob.Data))
	if err != nil {
		return nil, err
	}
	return &Loaded{Lang: lang, VarName: varName, Doc: doc, Version: blob.Version}, nil
}

// Blank returns an unsaved empty document for lang.
func (w *Workspace) Blank(lang string) *Loaded {
	doc := faq.NewDocument()
	doc.Meta, _ = json.Marshal(struct {
		Lang    string `json:"lang"`
		Version string `json:"version"`
	}{lang, "1.0"})
	return &Loaded{Lang: lang, VarName: codec.DefaultVarName(lang), Doc: doc}
}

// LoadOrBlank is Load, falling back to Blank when the document does not
// exist yet.
func (w *Workspace) LoadOrBlank(ctx context.Context, lang string) (*Loaded, error) {
	l, err := w.Load(ctx, lang)
	if errors.Is(err, storage.ErrNotFound) {
		return w.Blank(lang), nil
	}
	return l, err
}

// Save encodes and stores l. When l carries no version the current one
// is read first, so an unsaved document overwrites whatever is stored.
// A stale version returns storage.ErrConflict.
func (w *Workspace) Save(ctx context.Context, l *Loaded) error {
	text, err := codec.Encode(l.Doc, l.VarName)
	if err != nil {
		return err
	}
	p := w.DocumentPath(l.Lang)

	version := l.Version
	if version == "" {
		blob, err := w.store.Get(ctx, p)
		switch {
		case err == nil:
			version = blob.Version
		case errors.Is(err, storage.ErrNotFound):
		default:
			return fmt.Errorf("save %s: %w", l.Lang, err)
		}
	}

	newVersion, err := w.store.Put(ctx, p, []byte(text), storage.PutOptions{
		CreateIfMissing: true,
		Version:         version,
		Message:         fmt.Sprintf("Update %s FAQ data", l.Lang),
	})
	if err != nil {
		return fmt.Errorf("save %s: %w", l.Lang, err)
	}
	l.Version = newVersion
	w.log.Info("document saved", "lang", l.Lang, "path", p, "version", short(newVersion))
	return nil
}

// LoadAll loads every configured language, skipping those not stored.
func (w *Workspace) LoadAll(ctx context.Context) (map[string]*Loaded, error) {
	out := make(map[string]*Loaded, len(w.opts.Languages))
	for _, lang := range w.opts.Languages {
		l, err := w.Load(ctx, lang)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out[lang] = l
	}
	return out, nil
}

// Documents is LoadAll without the version tokens.
func (w *Workspace) Documents(ctx context.Context) (map[string]*faq.Document, error) {
	all, err := w.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	docs := make(map[string]*faq.Document, len(all))
	for lang, l := range all {
		docs[lang] = l.Doc
	}
	return docs, nil
}

// Merged loads every language and merges them.
func (w *Workspace) Merged(ctx context.Context) (*merge.MergedDocument, error) {
	docs, err := w.Documents(ctx)
	if err != nil {
		return nil, err
	}
	return merge.Merge(docs)
}

// Coverage reports nodes missing from some loaded language.
func (w *Workspace) Coverage(ctx context.Context) ([]merge.Gap, error) {
	docs, err := w.Documents(ctx)
	if err != nil {
		return nil, err
	}
	return merge.Coverage(docs), nil
}

var imageExtensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/jpg":  "jpg",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// SaveImage stores an uploaded image and returns the rich-text token that
// references it.
func (w *Workspace) SaveImage(ctx context.Context, data []byte, contentType string) (string, error) {
	mediaType := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	ext, ok := imageExtensions[mediaType]
	if !ok {
		return "", fmt.Errorf("%w: unsupported image type %q", faq.ErrPrecondition, contentType)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty image", faq.ErrPrecondition)
	}

	ms := w.now().UnixMilli()
	for attempt := 0; attempt < 10; attempt++ {
		p := path.Join(w.opts.ImageDir, fmt.Sprintf("img_%d.%s", ms+int64(attempt), ext))
		_, err := w.store.Get(ctx, p)
		if err == nil {
			continue
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return "", fmt.Errorf("save image: %w", err)
		}
		if _, err := w.store.Put(ctx, p, data, storage.PutOptions{CreateIfMissing: true, Message: "Upload image"}); err != nil {
			return "", fmt.Errorf("save image: %w", err)
		}
		w.log.Info("image saved", "path", p, "bytes", len(data))
		return richtext.Token(p), nil
	}
	return "", fmt.Errorf("save image: %w: no free name", storage.ErrConflict)
}

// ExportCSV writes the CSV form of lang into the export directory and
// returns its path.
func (w *Workspace) ExportCSV(ctx context.Context, lang string) (string, error) {
	l, err := w.Load(ctx, lang)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := exchange.WriteCSV(&buf, l.Doc); err != nil {
		return "", err
	}
	name := fmt.Sprintf("faq_%s_%s.csv", lang, w.now().Format("20060102-150405"))
	p := path.Join(w.opts.ExportDir, name)
	if _, err := w.store.Put(ctx, p, buf.Bytes(), storage.PutOptions{
		CreateIfMissing: true,
		Message:         "Export " + lang + " FAQ to CSV",
	}); err != nil {
		return "", fmt.Errorf("export %s: %w", lang, err)
	}
	w.log.Info("csv exported", "lang", lang, "path", p)
	return p, nil
}

// LatestCSV finds the newest stored export for lang.
func (w *Workspace) LatestCSV(ctx context.Context, lang string) (storage.Entry, error) {
	entries, err := w.store.List(ctx, w.opts.ExportDir)
	if err != nil {
		return storage.Entry{}, fmt.Errorf("list exports: %w", err)
	}
	prefix := "faq_" + lang + "_"
	var matches []storage.Entry
	for _, e := range entries {
		if strings.HasPrefix(e.Name, prefix) && strings.HasSuffix(e.Name, ".csv") {
			matches = append(matches, e)
		}
	}
	if len(matches) == 0 {
		return storage.Entry{}, fmt.Errorf("%w: no csv export for %s", storage.ErrNotFound, lang)
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Name > matches[j].Name })
	return matches[0], nil
}

// ImportCSV replaces the categories of lang with the content of a CSV
// file, keeping its variable name and meta, and saves the result.
func (w *Workspace) ImportCSV(ctx context.Context, lang string, data []byte) (*Loaded, error) {
	imported, err := exchange.ReadCSV(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	// A header-only file would wipe the document.
	if len(imported.Categories) == 0 {
		return nil, fmt.Errorf("%w: csv has no categories", faq.ErrPrecondition)
	}
	l, err := w.LoadOrBlank(ctx, lang)
	if err != nil {
		return nil, err
	}
	l.Doc.Categories = imported.Categories
	if err := w.Save(ctx, l); err != nil {
		return nil, err
	}
	st := l.Doc.Stats()
	w.log.Info("csv imported", "lang", lang, "categories", st.Categories, "questions", st.Questions)
	return l, nil
}

// ImportLatestCSV imports the newest stored export for lang.
func (w *Workspace) ImportLatestCSV(ctx context.Context, lang string) (*Loaded, error) {
	entry, err := w.LatestCSV(ctx, lang)
	if err != nil {
		return nil, err
	}
	blob, err := w.store.Get(ctx, entry.Path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", entry.Path, err)
	}
	return w.ImportCSV(ctx, lang, blob.Data)
}

func short(v string) string {
	if len(v) > 12 {
		return v[:12]
	}
	return v
}
