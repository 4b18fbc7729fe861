package extract

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dtnitsch/llm-log-parser/internal/common"
	extractpkg "github.com/dtnitsch/llm-log-parser/pkg/extract"
	"github.com/dtnitsch/llm-log-parser/pkg/flatten"
	"github.com/dtnitsch/llm-log-parser/pkg/report"
	"github.com/dtnitsch/llm-log-parser/pkg/storage"
	"github.com/urfave/cli/v2"
)

// ExtractAction flattens every raw message of the given log files into
// markdown leaf blocks. With --out-dir one .md file per input is written,
// otherwise markdown goes to stdout.
func ExtractAction(c *cli.Context) error {
	logger := common.NewLogger(c)

	if c.NArg() == 0 {
		return fmt.Errorf("expected at least one log file")
	}
	cfg, err := common.LoadConfig(c)
	if err != nil {
		return err
	}
	ex, err := extractpkg.New(cfg, logger)
	if err != nil {
		return err
	}

	outDir := c.String("out-dir")
	pngDir := outDir
	if pngDir == "" {
		pngDir = filepath.Join(cfg.OutputDir, "extract")
	}
	pngStore := storage.New(pngDir)
	mdStore := storage.New(outDir)
	imgOpts := report.ImageOptions{FontPath: cfg.Report.FontPath}

	var failed int
	for _, path := range c.Args().Slice() {
		env, err := extractpkg.ReadEnvelope(path)
		if err != nil {
			logger.Error("failed to read log file", "path", path, "error", err)
			failed++
			continue
		}
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

		var doc bytes.Buffer
		fmt.Fprintf(&doc, "# %s\n\n", filepath.Base(path))
		envelopeFields := []flatten.Pair{
			{Key: "folder_name", Value: env.FolderName},
			{Key: "timestamp", Value: env.Timestamp},
			{Key: "total_messages", Value: strconv.Itoa(env.TotalMessages)},
		}
		if err := report.WriteLeaves(&doc, envelopeFields); err != nil {
			return err
		}

		for _, rec := range extractpkg.Records(env, env.FolderName, path) {
			pairs, err := ex.Leaves(rec.Raw)
			if err != nil {
				logger.Warn("payload not recovered, printing raw content",
					"path", path, "message_index", rec.Index, "error_type", extractpkg.ErrorType(err), "error", err)
				pairs = []flatten.Pair{{Key: "raw_content", Value: rec.Raw}}
			}

			fmt.Fprintf(&doc, "## Message %d\n\n", rec.Index)
			if err := report.WriteLeaves(&doc, pairs); err != nil {
				return err
			}

			if c.Bool("png") {
				title := fmt.Sprintf("%s #%d", base, rec.Index)
				buf, err := report.RenderLeaves(title, pairs, imgOpts)
				if err != nil {
					return fmt.Errorf("failed to render %s: %w", title, err)
				}
				name := fmt.Sprintf("%s_%d.png", base, rec.Index)
				if _, err := pngStore.SaveFile(name, buf.Bytes()); err != nil {
					return err
				}
				logger.Debug("image written", "path", pngStore.Path(name))
			}
		}

		if outDir == "" {
			if _, err := io.Copy(os.Stdout, &doc); err != nil {
				return err
			}
			continue
		}
		written, err := mdStore.SaveFile(base+".md", doc.Bytes())
		if err != nil {
			return err
		}
		fmt.Println(written)
	}

	if failed == c.NArg() {
		return fmt.Errorf("no log file could be read")
	}
	return nil
}
