package watch

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sagan/aimeta/cmd"
	"github.com/sagan/aimeta/constants"
	"github.com/sagan/aimeta/features/civitai"
	"github.com/sagan/aimeta/features/extract"
	"github.com/sagan/aimeta/features/render"
	"github.com/sagan/aimeta/util"
)

var watchCmd = &cobra.Command{
	Use:   "watch {dir}",
	Short: "Watch a dir and print the metadata of the newest image",
	Long: `Watch a dir and print the metadata of the newest image.

It polls {dir} (not recursive) every --interval seconds. Whenever the newest
.png / .jpg / .jpeg / .webp file changes (a new file, or the newest file modified),
its metadata is extracted and printed. A result of an older image that finishes
after a newer image has been picked up is dropped.

Examples:
  aimeta watch ComfyUI/output
  aimeta watch -n 5 outputs --civitai
`,
	Args: cobra.ExactArgs(1),
	RunE: doWatch,
}

var (
	flagInterval int
	flagRaw      bool
	flagFormat   string
)

var imageExts = []string{".png", ".jpg", ".jpeg", ".webp"}

type snapshot struct {
	path  string
	mtime time.Time
}

type result struct {
	ticket uint64
	res    *extract.Result
}

func doWatch(command *cobra.Command, args []string) (err error) {
	if flagInterval <= 0 {
		return fmt.Errorf("invalid interval")
	}
	if flagFormat != constants.FORMAT_TEXT && flagFormat != constants.FORMAT_JSON {
		return fmt.Errorf("invalid format %q", flagFormat)
	}
	dir := args[0]
	opts, client, err := cmd.ExtractOptions(command)
	if err != nil {
		return err
	}
	ticker := time.NewTicker(time.Duration(flagInterval) * time.Second)
	defer ticker.Stop()

	ctx := command.Context()
	session := &extract.Session{}
	results := make(chan result)
	var last snapshot

	var check = func() {
		current, err := newestImage(dir)
		if err != nil {
			log.Errorf("Failed to scan %q: %v", dir, err)
			return
		}
		if current.path == "" || (current.path == last.path && current.mtime.Equal(last.mtime)) {
			return
		}
		last = current
		ticket := session.Begin()
		log.Debugf("extracting %q (pass %d)", current.path, ticket)
		go func() {
			res := process(ctx, current.path, opts, client)
			select {
			case results <- result{ticket, res}:
			case <-ctx.Done():
			}
		}()
	}

	check()
	for {
		select {
		case <-ticker.C:
			check()
		case r := <-results:
			if r.res == nil {
				continue
			}
			if !session.Commit(r.ticket, r.res) {
				log.Debugf("drop stale result of %q", r.res.Info.FileName)
				continue
			}
			if err = printResult(command, r.res); err != nil {
				return err
			}
		case <-ctx.Done():
			return nil
		}
	}
}

func process(ctx context.Context, path string, opts extract.Options, client *civitai.Client) *extract.Result {
	res, err := extract.ExtractFile(ctx, path, opts)
	if err != nil {
		log.Errorf("%v", err)
		return nil
	}
	if client != nil {
		extract.Resolve(ctx, res, client, constants.DEFAULT_JOBS)
	}
	return res
}

func printResult(command *cobra.Command, res *extract.Result) error {
	buf := &bytes.Buffer{}
	fmt.Fprintf(buf, "==> %s <==\n", time.Now().Format(time.DateTime))
	if flagFormat == constants.FORMAT_JSON {
		buf.WriteString(util.ToJson(res))
		buf.WriteString("\n")
	} else {
		render.Text(buf, res, render.Options{Raw: flagRaw})
	}
	buf.WriteString("\n")
	_, err := command.OutOrStdout().Write(buf.Bytes())
	return err
}

// newestImage returns the most recently modified image file of dir.
// The path is empty if dir has no image file.
func newestImage(dir string) (newest snapshot, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return newest, err
	}
	for _, entry := range entries {
		if !entry.Type().IsRegular() || strings.HasPrefix(entry.Name(), ".") ||
			!slices.Contains(imageExts, strings.ToLower(filepath.Ext(entry.Name()))) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if newest.path == "" || info.ModTime().After(newest.mtime) {
			newest = snapshot{filepath.Join(dir, entry.Name()), info.ModTime()}
		}
	}
	return newest, nil
}

func init() {
	watchCmd.Flags().IntVarP(&flagInterval, "interval", "n", constants.DEFAULT_WATCH_INTERVAL,
		"Specify update interval (seconds)")
	watchCmd.Flags().BoolVarP(&flagRaw, "raw", "", false, `Print raw metadata blocks in "text" format`)
	watchCmd.Flags().StringVarP(&flagFormat, "format", "f", constants.FORMAT_TEXT,
		`Output format: "`+constants.FORMAT_TEXT+`" or "`+constants.FORMAT_JSON+`" (one line per result)`)
	cmd.AddExtractFlags(watchCmd)
	cmd.RootCmd.AddCommand(watchCmd)
}
