package strip

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sagan/aimeta/cmd"
	"github.com/sagan/aimeta/constants"
	"github.com/sagan/aimeta/features/container"
	"github.com/sagan/aimeta/util/helper"
	"github.com/sagan/aimeta/util/imgutil"
	"github.com/sagan/aimeta/util/pathutil"
)

var stripCmd = &cobra.Command{
	Use:   "strip {foo.png}...",
	Short: "Write copies of images with all metadata removed",
	Long: `Write copies of images with all metadata removed.

The image is decoded and re-encoded, so only the pixels are kept.
The copy of "foo.png" is written to "foo` + constants.STRIPPED_FILENAME_SUFFIX + `.png" in the same dir.
JPEG files are re-encoded as JPEG (quality ` + fmt.Sprint(constants.DEFAULT_JPEG_QUALITY) + `);
all other formats (including WebP) are written as PNG.

If --lossless flag is set, PNG files are not re-encoded: the ancillary chunks
(tEXt / zTXt / iTXt / eXIf ...) are dropped and the image data is copied as is.

An existing stripped copy is an error, unless --force flag is set (overwrite it)
or --rename flag is set (write to "foo` + constants.STRIPPED_FILENAME_SUFFIX + ` (1).png" and so on).

Each {file} can be a glob pattern. It asks for confirmation unless --force flag is set.

Examples:
  aimeta strip foo.png bar.jpg
  aimeta strip "outputs/*.png" --lossless --force
`,
	Args: cobra.MinimumNArgs(1),
	RunE: doStrip,
}

var (
	flagForce    bool
	flagLossless bool
	flagRename   bool
	flagSuffix   string
)

func doStrip(cmd *cobra.Command, args []string) (err error) {
	filenames := helper.ParseFilenameArgs(args...)
	if len(filenames) == 0 {
		return fmt.Errorf("no matched files")
	}
	if !flagForce && !helper.AskYesNoConfirm(fmt.Sprintf("Will write stripped copies of %d file(s)", len(filenames))) {
		return fmt.Errorf("abort")
	}
	errorCnt := 0
	for _, filename := range filenames {
		target, err := stripFile(filename)
		if err != nil {
			log.Errorf("%s: %v", filename, err)
			errorCnt++
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s => %s\n", filename, target)
	}
	if errorCnt > 0 {
		return fmt.Errorf("%d errors", errorCnt)
	}
	return nil
}

func stripFile(filename string) (target string, err error) {
	if filename == "-" {
		return "", fmt.Errorf("stdin is not supported")
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return "", err
	}
	kind := container.Detect(data)
	if kind == container.KindUnknown {
		return "", fmt.Errorf("unsupported file type")
	}
	ext := imgutil.StrippedExt(filepath.Ext(filename))
	if kind != container.KindJPEG {
		ext = ".png"
	}
	target = pathutil.SuffixedFilename(filename, flagSuffix, ext)
	if flagRename && !flagForce {
		if target, err = helper.GetNewFilePath(filepath.Dir(target), filepath.Base(target)); err != nil {
			return "", err
		}
	} else if err = helper.CheckOutput(target, flagForce); err != nil {
		return "", err
	}
	buf := &bytes.Buffer{}
	if flagLossless && kind == container.KindPNG {
		buf.Write(container.StripAncillaryChunks(data))
	} else if err = imgutil.Reencode(data, buf, ext); err != nil {
		return "", err
	}
	return target, helper.WriteOutput(nil, target, buf)
}

func init() {
	stripCmd.Flags().BoolVarP(&flagForce, "force", "", false,
		"Do not ask for confirmation and overwrite existing stripped files")
	stripCmd.Flags().BoolVarP(&flagLossless, "lossless", "", false,
		"Drop PNG ancillary chunks without re-encoding the image data")
	stripCmd.Flags().BoolVarP(&flagRename, "rename", "", false,
		`Write to a numbered name ("foo`+constants.STRIPPED_FILENAME_SUFFIX+` (1).png") if the stripped file exists`)
	stripCmd.Flags().StringVarP(&flagSuffix, "suffix", "", constants.STRIPPED_FILENAME_SUFFIX,
		"Suffix appended to the base name of output files")
	cmd.RootCmd.AddCommand(stripCmd)
}
