package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ZacxDev/video-toolkit/internal/config"
	"github.com/ZacxDev/video-toolkit/internal/ffmpeg"
	"github.com/ZacxDev/video-toolkit/internal/logging"
	"github.com/ZacxDev/video-toolkit/internal/processor"
	"github.com/ZacxDev/video-toolkit/pkg/videoprocessor"
)

var (
	logger = zap.NewNop()

	okColor   = color.New(color.FgGreen)
	errColor  = color.New(color.FgRed)
	warnColor = color.New(color.FgYellow)
	keyColor  = color.New(color.FgCyan, color.Bold)

	rootCmd = &cobra.Command{
		Use:   "video-toolkit",
		Short: "Crop, adjust and split videos using named regions",
		Long: `video-toolkit is a command-line tool for cutting named rectangular regions out of videos.
Regions are drawn over a still frame, saved as reusable crop templates, and applied to
one or many videos. It can also adjust brightness/contrast, split videos into chunks,
cut clips around timestamps and compare the metadata of several videos.

Examples:
  # Draw regions by replaying a gesture script and save them as a template
  video-toolkit regions edit -i input.mp4 --events gestures.json --name face --save-as talking-head

  # Crop every video in a directory with a saved template
  video-toolkit crop --input-dir ./videos -o ./crops --template talking-head

  # Split a video into 60-second chunks
  video-toolkit split -i input.mp4 -o ./chunks -d 60

  # Check a batch of recordings share resolution and frame rate
  video-toolkit probe ./videos/*.mp4 --field resolution --field fps`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			l, err := logging.New(verbose)
			if err != nil {
				return errors.Wrap(err, "failed to create logger")
			}
			logger = l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
	}

	cropCmd = &cobra.Command{
		Use:   "crop [videos...]",
		Short: "Crop named regions out of one or more videos",
		Long: fmt.Sprintf(`Crop every region of a template or crop file out of each input video.
Each region is written to <output>/<region>/<video>_<region><ext>; regions whose names
reduce to the same file name get _1, _2, ... suffixes. A stream copy is
tried first; when ffmpeg rejects it the region is re-encoded.

Supported profiles:
%s
Example:
  video-toolkit crop -o ./crops --template talking-head a.mp4 b.mov`,
			formatSupportedProfiles()),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := &config.CropOptions{}

			inputDir, _ := cmd.Flags().GetString("input-dir")
			outputDir, _ := cmd.Flags().GetString("output")
			templateName, _ := cmd.Flags().GetString("template")
			regionsFile, _ := cmd.Flags().GetString("regions")
			prof, _ := cmd.Flags().GetString("profile")
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			opts.InputPaths = args
			opts.InputDir = inputDir
			opts.OutputDir = outputDir
			opts.TemplateName = templateName
			opts.RegionsFile = regionsFile
			opts.TemplateDir = templateDir(cmd)
			opts.Profile = prof
			opts.Verbose = verbose(cmd)

			if len(opts.InputPaths) == 0 && opts.InputDir == "" {
				return fmt.Errorf("at least one input video or --input-dir is required")
			}

			if dryRun {
				layout, err := videoprocessor.OutputLayout(opts, logger)
				if err != nil {
					return err
				}
				names := make([]string, 0, len(layout))
				for name := range layout {
					names = append(names, name)
				}
				sort.Strings(names)
				for _, name := range names {
					fmt.Printf("%s -> %s\n", keyColor.Sprint(name), layout[name])
				}
				return nil
			}

			ctx, stop := signalContext()
			defer stop()
			results, err := videoprocessor.CropVideos(ctx, opts, logger)
			if err != nil {
				return reportValidation(err)
			}
			return printCropResults(results)
		},
	}

	adjustCmd = &cobra.Command{
		Use:   "adjust",
		Short: "Adjust brightness and contrast of a video",
		Long: `Apply a brightness/contrast adjustment, each in the range -100..100.

Example:
  video-toolkit adjust -i input.mp4 --brightness 20 --contrast -10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := &config.AdjustOptions{}

			inputPath, _ := cmd.Flags().GetString("input")
			outputPath, _ := cmd.Flags().GetString("output")
			outputDir, _ := cmd.Flags().GetString("output-dir")
			brightness, _ := cmd.Flags().GetInt("brightness")
			contrast, _ := cmd.Flags().GetInt("contrast")
			prof, _ := cmd.Flags().GetString("profile")

			opts.InputPath = inputPath
			opts.OutputPath = outputPath
			opts.OutputDir = outputDir
			opts.Brightness = brightness
			opts.Contrast = contrast
			opts.Profile = prof
			opts.Verbose = verbose(cmd)

			ctx, stop := signalContext()
			defer stop()
			out, err := videoprocessor.AdjustVideo(ctx, opts, logger)
			if err != nil {
				return err
			}
			okColor.Printf("Adjusted video written to %s\n", out)
			return nil
		},
	}

	splitCmd = &cobra.Command{
		Use:   "split",
		Short: "Split a video into smaller chunks",
		Long: `Split a video file into chunks of a fixed duration.
Chunks are written to <output>/<video>/<video>_NNN<ext>.

Example:
  video-toolkit split -i input.mp4 -o ./output -d 15`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := &config.SplitOptions{}

			inputPath, _ := cmd.Flags().GetString("input")
			outputDir, _ := cmd.Flags().GetString("output")
			duration, _ := cmd.Flags().GetFloat64("duration")
			prof, _ := cmd.Flags().GetString("profile")
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			opts.InputPath = inputPath
			opts.OutputDir = outputDir
			opts.ChunkDuration = duration
			opts.Profile = prof
			opts.DryRun = dryRun
			opts.Verbose = verbose(cmd)

			ctx, stop := signalContext()
			defer stop()
			chunks, err := videoprocessor.SplitVideo(ctx, opts, logger)
			if err != nil {
				return err
			}
			for _, c := range chunks {
				fmt.Printf("%s  %s - %s  %s\n",
					keyColor.Sprintf("%03d", c.Index),
					formatSeconds(c.Start), formatSeconds(c.End()), c.Path)
			}
			if !dryRun {
				okColor.Printf("Created %d chunk(s)\n", len(chunks))
			}
			return nil
		},
	}

	probeCmd = &cobra.Command{
		Use:   "probe <video> [video...]",
		Short: "Show or compare video metadata",
		Long: `Show the metadata of a video. Given several videos, compare them field by field,
summarize the numeric fields and flag outliers. --expect checks every video against a value.

Examples:
  video-toolkit probe input.mp4
  video-toolkit probe a.mp4 b.mp4 c.mp4 --field resolution --field fps
  video-toolkit probe *.mp4 --expect fps=30 --expect resolution=1920x1080`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, _ := cmd.Flags().GetStringSlice("field")
			expect, _ := cmd.Flags().GetStringToString("expect")
			threshold, _ := cmd.Flags().GetFloat64("anomaly-threshold")

			if len(args) == 1 && len(expect) == 0 {
				m, err := videoprocessor.GetVideoMetadata(args[0], logger)
				if err != nil {
					return err
				}
				printMetadata(m)
				return nil
			}

			res, err := videoprocessor.CompareVideos(&config.CompareOptions{
				InputPaths:       args,
				Fields:           fields,
				Expect:           expect,
				AnomalyThreshold: threshold,
				Verbose:          verbose(cmd),
			}, logger)
			if err != nil {
				return err
			}
			printComparison(res)
			if len(res.Failures) > 0 {
				return fmt.Errorf("%d value(s) did not match the expected criteria", len(res.Failures))
			}
			return nil
		},
	}

	snippetCmd = &cobra.Command{
		Use:   "snippet",
		Short: "Cut short clips around timestamps",
		Long: `Cut a clip from --before seconds ahead of each timestamp to --after seconds past it.
Windows are clamped to the video; clips shorter than a second are skipped.
Timestamps may be HH:MM:SS[.ms], MM:SS or seconds.

Example:
  video-toolkit snippet -i input.mp4 -o snippets --at 00:01:23 --at 4:10 --before 5 --after 10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := &config.SnippetOptions{}

			inputPath, _ := cmd.Flags().GetString("input")
			outputDir, _ := cmd.Flags().GetString("output")
			timestamps, _ := cmd.Flags().GetStringSlice("at")
			before, _ := cmd.Flags().GetFloat64("before")
			after, _ := cmd.Flags().GetFloat64("after")
			label, _ := cmd.Flags().GetString("label")
			prof, _ := cmd.Flags().GetString("profile")
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			opts.InputPath = inputPath
			opts.OutputDir = outputDir
			opts.Timestamps = timestamps
			opts.Before = before
			opts.After = after
			opts.Label = label
			opts.Profile = prof
			opts.DryRun = dryRun
			opts.Verbose = verbose(cmd)

			ctx, stop := signalContext()
			defer stop()
			snippets, err := videoprocessor.ExtractSnippets(ctx, opts, logger)
			for _, sn := range snippets {
				window := fmt.Sprintf("%s - %s", formatSeconds(sn.Start), formatSeconds(sn.End))
				if sn.Skipped {
					warnColor.Printf("  - %s skipped, window %s too short\n", formatSeconds(sn.Timestamp), window)
					continue
				}
				fmt.Printf("  %s %s  %s\n", okColor.Sprint("✓"), keyColor.Sprint(window), sn.OutputPath)
			}
			return err
		},
	}

	analyzeCmd = &cobra.Command{
		Use:   "analyze <video>",
		Short: "Suggest a brightness/contrast adjustment",
		Long: `Sample still frames across a video, assess its exposure and contrast, and print
the adjust flags that would move it toward a balanced picture.

Example:
  video-toolkit analyze input.mp4 --samples 20`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			samples, _ := cmd.Flags().GetInt("samples")
			opts := &config.AnalyzeOptions{
				VideoPath: args[0],
				Samples:   samples,
				Verbose:   verbose(cmd),
			}

			ctx, stop := signalContext()
			defer stop()
			res, err := videoprocessor.AnalyzeVideo(ctx, opts, logger)
			if err != nil {
				return err
			}
			printField("Frames", fmt.Sprint(res.Frames))
			printField("Mean luma", fmt.Sprintf("%.1f", res.Stats.Mean))
			printField("Contrast", fmt.Sprintf("%.1f", res.Stats.RMSContrast))
			printField("Range", fmt.Sprintf("%.0f-%.0f", res.Stats.Min, res.Stats.Max))
			printField("Dark/bright", fmt.Sprintf("%.0f%% / %.0f%%", res.Stats.DarkRatio*100, res.Stats.BrightRatio*100))
			fmt.Println(res.Description)
			if res.Suggestion.Brightness == 0 && res.Suggestion.Contrast == 0 {
				okColor.Println("No adjustment needed")
				return nil
			}
			warnColor.Printf("Suggested: video-toolkit adjust -i %s --brightness %d --contrast %d\n",
				args[0], res.Suggestion.Brightness, res.Suggestion.Contrast)
			return nil
		},
	}

	regionsCmd = &cobra.Command{
		Use:   "regions",
		Short: "Draw, preview and validate crop regions",
	}

	regionsEditCmd = &cobra.Command{
		Use:   "edit",
		Short: "Replay a pointer gesture script over a still frame",
		Long: `Build a region set by replaying recorded pointer events over a still frame of a video.
The script is a JSON array of {"kind": "down|move|up", "x": .., "y": ..} in display
coordinates of a --width x --height surface. Each drawn region takes the next --name.
Entries of kind "delete", "rename" and "clear" edit the set; "target" names the region
(the selection when omitted) and "name" is the new name for a rename.

Example:
  video-toolkit regions edit -i input.mp4 --events gestures.json --name face --name logo --save-as layout`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := &config.EditOptions{}

			videoPath, _ := cmd.Flags().GetString("input")
			timestamp, _ := cmd.Flags().GetFloat64("timestamp")
			eventsPath, _ := cmd.Flags().GetString("events")
			regionsFile, _ := cmd.Flags().GetString("regions")
			width, _ := cmd.Flags().GetInt("width")
			height, _ := cmd.Flags().GetInt("height")
			templateName, _ := cmd.Flags().GetString("template")
			saveAs, _ := cmd.Flags().GetString("save-as")
			names, _ := cmd.Flags().GetStringSlice("name")
			snapshot, _ := cmd.Flags().GetString("snapshot")
			asJSON, _ := cmd.Flags().GetBool("json")

			opts.VideoPath = videoPath
			opts.Timestamp = timestamp
			opts.EventsPath = eventsPath
			opts.RegionsFile = regionsFile
			opts.SurfaceWidth = width
			opts.SurfaceHeight = height
			opts.TemplateName = templateName
			opts.SaveAs = saveAs
			opts.Names = names
			opts.SnapshotPath = snapshot
			opts.TemplateDir = templateDir(cmd)
			opts.Verbose = verbose(cmd)

			ctx, stop := signalContext()
			defer stop()
			res, err := videoprocessor.EditRegions(ctx, opts, logger)
			if res != nil && asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				if jerr := enc.Encode(res.Summary); jerr != nil {
					return errors.Wrap(jerr, "failed to encode region summary")
				}
			} else if res != nil {
				for _, r := range res.Manager.Rectangles() {
					fmt.Printf("%s  %dx%d at (%d, %d)\n", keyColor.Sprint(r.Name), r.Width, r.Height, r.X, r.Y)
				}
				printProblems(res.Validation)
			}
			if err != nil {
				return err
			}
			if res.SnapshotPath != "" {
				okColor.Fprintf(os.Stderr, "Snapshot written to %s (cursor: %s)\n", res.SnapshotPath, res.Cursor)
			}
			if res.TemplatePath != "" {
				okColor.Fprintf(os.Stderr, "Template saved to %s\n", res.TemplatePath)
			}
			return nil
		},
	}

	regionsPreviewCmd = &cobra.Command{
		Use:   "preview",
		Short: "Render regions over a still frame into a PNG",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := &config.PreviewOptions{}

			videoPath, _ := cmd.Flags().GetString("input")
			timestamp, _ := cmd.Flags().GetFloat64("timestamp")
			templateName, _ := cmd.Flags().GetString("template")
			regionsFile, _ := cmd.Flags().GetString("regions")
			outputPath, _ := cmd.Flags().GetString("output")
			highlight, _ := cmd.Flags().GetString("highlight")
			width, _ := cmd.Flags().GetInt("width")
			height, _ := cmd.Flags().GetInt("height")

			opts.VideoPath = videoPath
			opts.Timestamp = timestamp
			opts.TemplateName = templateName
			opts.RegionsFile = regionsFile
			opts.OutputPath = outputPath
			opts.Highlight = highlight
			opts.SurfaceWidth = width
			opts.SurfaceHeight = height
			opts.TemplateDir = templateDir(cmd)
			opts.Verbose = verbose(cmd)

			ctx, stop := signalContext()
			defer stop()
			out, err := videoprocessor.PreviewRegions(ctx, opts, logger)
			if err != nil {
				return err
			}
			okColor.Printf("Preview written to %s\n", out)
			return nil
		},
	}

	regionsValidateCmd = &cobra.Command{
		Use:   "validate",
		Short: "Check a region set, optionally against a video",
		RunE: func(cmd *cobra.Command, args []string) error {
			templateName, _ := cmd.Flags().GetString("template")
			regionsFile, _ := cmd.Flags().GetString("regions")
			videoPath, _ := cmd.Flags().GetString("input")

			problems, err := videoprocessor.ValidateRegions(templateName, regionsFile, templateDir(cmd), videoPath, logger)
			if err != nil {
				return err
			}
			if len(problems) == 0 {
				okColor.Println("Regions are valid")
				return nil
			}
			printProblems(problems)
			return fmt.Errorf("%d problem(s) found", len(problems))
		},
	}

	templateCmd = &cobra.Command{
		Use:   "template",
		Short: "Manage saved crop templates",
	}

	templateListCmd = &cobra.Command{
		Use:   "list",
		Short: "List saved templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := videoprocessor.NewTemplateStore(templateDir(cmd), logger)
			names, err := store.ListTemplates()
			if err != nil {
				return err
			}
			if len(names) == 0 {
				warnColor.Printf("No templates in %s\n", store.Dir)
				return nil
			}
			for _, name := range names {
				info, err := store.Info(store.Path(name))
				if err != nil {
					fmt.Printf("%s  %s\n", keyColor.Sprint(name), errColor.Sprint(err))
					continue
				}
				fmt.Printf("%s  %d region(s)  %s\n", keyColor.Sprint(name), info.RectangleCount, humanize.Bytes(uint64(info.FileSize)))
			}
			return nil
		},
	}

	templateShowCmd = &cobra.Command{
		Use:   "show <name>",
		Short: "Print the regions of a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := videoprocessor.NewTemplateStore(templateDir(cmd), logger)
			rects, err := store.LoadTemplate(args[0])
			if err != nil {
				return err
			}
			for _, r := range rects {
				fmt.Printf("%s  %dx%d at (%d, %d)  %s\n",
					keyColor.Sprint(r.Name), r.Width, r.Height, r.X, r.Y, r.Color)
			}
			return nil
		},
	}

	templateInfoCmd = &cobra.Command{
		Use:   "info <name|file>",
		Short: "Describe a template without loading its regions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := videoprocessor.NewTemplateStore(templateDir(cmd), logger)
			path := args[0]
			if _, err := os.Stat(path); err != nil {
				path = store.Path(args[0])
			}
			info, err := store.Info(path)
			if err != nil {
				return err
			}
			printField("Path", info.Path)
			printField("Version", info.Version)
			printField("Regions", fmt.Sprint(info.RectangleCount))
			printField("Size", humanize.Bytes(uint64(info.FileSize)))
			for _, key := range info.VideoInfoKeys() {
				printField("  "+key, fmt.Sprint(info.VideoInfo[key]))
			}
			return nil
		},
	}

	templateDeleteCmd = &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a saved template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := videoprocessor.NewTemplateStore(templateDir(cmd), logger)
			if err := store.DeleteTemplate(args[0]); err != nil {
				return err
			}
			okColor.Printf("Deleted template %s\n", args[0])
			return nil
		},
	}

	templateExportCmd = &cobra.Command{
		Use:   "export <name> <file>",
		Short: "Export a template with summary metadata",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := videoprocessor.NewTemplateStore(templateDir(cmd), logger)
			rects, err := store.LoadTemplate(args[0])
			if err != nil {
				return err
			}
			info, err := store.Info(store.Path(args[0]))
			if err != nil {
				return err
			}
			out, err := store.Export(rects, args[1], info.VideoInfo)
			if err != nil {
				return err
			}
			okColor.Printf("Exported %d region(s) to %s\n", len(rects), out)
			return nil
		},
	}
)

func formatSupportedProfiles() string {
	var sb strings.Builder
	for _, p := range videoprocessor.GetSupportedProfiles() {
		sb.WriteString(fmt.Sprintf("- %s\n", p))
	}
	return sb.String()
}

func formatFields() string {
	names := make([]string, 0, len(ffmpeg.ComparableFields))
	for _, f := range ffmpeg.ComparableFields {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}

func verbose(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("verbose")
	return v
}

func templateDir(cmd *cobra.Command) string {
	dir, _ := cmd.Flags().GetString("template-dir")
	return dir
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func formatSeconds(s float64) string {
	return (time.Duration(s * float64(time.Second))).Round(10 * time.Millisecond).String()
}

func printMetadata(m *ffmpeg.VideoMetadata) {
	printField("Path", m.Path)
	printField("Resolution", m.Resolution())
	printField("Duration", formatSeconds(m.Duration))
	printField("Frame rate", fmt.Sprintf("%.2f fps", m.FrameRate))
	printField("Frames", humanize.Comma(int64(m.FrameCount)))
	printField("Video codec", m.Codec)
	if m.AudioCodec != "" {
		printField("Audio codec", m.AudioCodec)
	}
	if m.Format != "" {
		printField("Format", m.Format)
	}
	if m.Bitrate > 0 {
		printField("Bitrate", humanize.SI(float64(m.Bitrate), "bps"))
	}
	if m.Size > 0 {
		printField("Size", humanize.Bytes(uint64(m.Size)))
	}
}

func printComparison(res *processor.CompareResult) {
	for _, path := range res.Unreadable {
		warnColor.Printf("Could not read %s\n", path)
	}
	fmt.Printf("Compared %d video(s)\n", res.Comparison.Total)
	for _, fc := range res.Comparison.Fields {
		if v, ok := fc.Common(); ok {
			fmt.Printf("  %s %s %s\n", okColor.Sprint("✓"), keyColor.Sprintf("%-18s", fc.Field.Label()), v)
			continue
		}
		fmt.Printf("  %s %s\n", errColor.Sprint("✗"), keyColor.Sprint(fc.Field.Label()))
		for _, v := range fc.Values {
			fmt.Printf("      %s: %s\n", v, strings.Join(fc.Videos[v], ", "))
		}
	}

	if len(res.Stats) > 0 {
		fmt.Println("Statistics")
	}
	for _, fc := range res.Comparison.Fields {
		st, ok := res.Stats[fc.Field]
		if !ok {
			continue
		}
		fmt.Printf("  %s min %.2f  max %.2f  mean %.2f  median %.2f  std dev %.2f\n",
			keyColor.Sprintf("%-18s", fc.Field.Label()), st.Min, st.Max, st.Mean, st.Median, st.StdDev)
		for _, a := range res.Anomalies[fc.Field] {
			warnColor.Printf("      ! %s: %.2f is %.1f%% off the mean\n", a.Video, a.Value, a.Percent)
		}
	}

	if len(res.Failures) == 0 {
		return
	}
	fmt.Println("Criteria")
	for _, f := range res.Failures {
		errColor.Printf("  ✗ %s: %s expected %s, got %s\n", f.Video, f.Field, f.Expected, f.Actual)
	}
}

func printField(key, value string) {
	fmt.Printf("%s %s\n", keyColor.Sprintf("%-12s", key+":"), value)
}

func printProblems(problems []string) {
	for _, p := range problems {
		errColor.Printf("  ✗ %s\n", p)
	}
}

func reportValidation(err error) error {
	var verr *videoprocessor.ValidationError
	if errors.As(err, &verr) {
		printProblems(verr.Problems)
	}
	return err
}

func printCropResults(results map[string]map[string]*processor.CropResult) error {
	inputs := make([]string, 0, len(results))
	for input := range results {
		inputs = append(inputs, input)
	}
	sort.Strings(inputs)

	failed := 0
	for _, input := range inputs {
		fmt.Println(keyColor.Sprint(input))
		regions := make([]string, 0, len(results[input]))
		for name := range results[input] {
			regions = append(regions, name)
		}
		sort.Strings(regions)
		for _, name := range regions {
			res := results[input][name]
			if res.Err != nil {
				failed++
				errColor.Printf("  ✗ %s: %v\n", name, res.Err)
				continue
			}
			okColor.Printf("  ✓ %s", name)
			fmt.Printf(" -> %s (%s)\n", res.Output, res.Profile)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d region(s) failed", failed)
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().String("template-dir", "", "Template directory (default $HOME/.video_processing/crop_templates)")

	profiles := strings.Join(videoprocessor.GetSupportedProfiles(), ", ")

	// Crop command flags
	cropCmd.Flags().String("input-dir", "", "Directory scanned recursively for videos")
	cropCmd.Flags().StringP("output", "o", "", "Output directory")
	cropCmd.Flags().StringP("template", "t", "", "Saved template name")
	cropCmd.Flags().StringP("regions", "r", "", "Crop file with regions (overrides --template)")
	cropCmd.Flags().String("profile", "", fmt.Sprintf("Force an encoder profile (%s)", profiles))
	cropCmd.Flags().Bool("dry-run", false, "Print the output layout without encoding")
	cropCmd.MarkFlagRequired("output")

	// Adjust command flags
	adjustCmd.Flags().StringP("input", "i", "", "Input video file")
	adjustCmd.Flags().StringP("output", "o", "", "Output video path")
	adjustCmd.Flags().String("output-dir", "", "Output directory (default: next to the input)")
	adjustCmd.Flags().IntP("brightness", "b", 0, "Brightness (-100..100)")
	adjustCmd.Flags().IntP("contrast", "c", 0, "Contrast (-100..100)")
	adjustCmd.Flags().String("profile", "", fmt.Sprintf("Encoder profile (%s)", profiles))
	adjustCmd.MarkFlagRequired("input")

	// Split command flags
	splitCmd.Flags().StringP("input", "i", "", "Input video file")
	splitCmd.Flags().StringP("output", "o", "", "Output directory")
	splitCmd.Flags().Float64P("duration", "d", config.DefaultChunkDuration, "Duration of each chunk in seconds")
	splitCmd.Flags().String("profile", "", fmt.Sprintf("Encoder profile (%s)", profiles))
	splitCmd.Flags().Bool("dry-run", false, "Print the chunk plan without encoding")
	splitCmd.MarkFlagRequired("input")
	splitCmd.MarkFlagRequired("output")

	// Probe flags
	probeCmd.Flags().StringSlice("field", nil, fmt.Sprintf("Fields to compare across videos (%s)", formatFields()))
	probeCmd.Flags().StringToString("expect", nil, "Required field values, e.g. fps=30")
	probeCmd.Flags().Float64("anomaly-threshold", config.DefaultAnomalyThreshold, "Relative deviation from the mean flagged as an outlier")

	// Snippet flags
	snippetCmd.Flags().StringP("input", "i", "", "Input video file")
	snippetCmd.Flags().StringP("output", "o", "", "Output directory")
	snippetCmd.Flags().StringSlice("at", nil, "Timestamp to cut around (repeatable)")
	snippetCmd.Flags().Float64("before", config.DefaultSnippetBefore, "Seconds to keep before each timestamp")
	snippetCmd.Flags().Float64("after", config.DefaultSnippetAfter, "Seconds to keep after each timestamp")
	snippetCmd.Flags().String("label", "", "Label appended to clip names")
	snippetCmd.Flags().String("profile", "", fmt.Sprintf("Encoder profile (%s)", profiles))
	snippetCmd.Flags().Bool("dry-run", false, "Print the clip windows without encoding")
	snippetCmd.MarkFlagRequired("input")
	snippetCmd.MarkFlagRequired("output")
	snippetCmd.MarkFlagRequired("at")

	// Analyze flags
	analyzeCmd.Flags().Int("samples", config.DefaultAnalysisSamples, "Number of frames to sample")

	// Regions edit flags
	regionsEditCmd.Flags().StringP("input", "i", "", "Video the still frame is taken from")
	regionsEditCmd.Flags().Float64("timestamp", 0, "Still frame position in seconds")
	regionsEditCmd.Flags().String("events", "", "JSON pointer gesture script")
	regionsEditCmd.Flags().StringP("regions", "r", "", "Crop file to start from")
	regionsEditCmd.Flags().StringP("template", "t", "", "Saved template to start from")
	regionsEditCmd.Flags().Int("width", config.DefaultSurfaceWidth, "Display surface width")
	regionsEditCmd.Flags().Int("height", config.DefaultSurfaceHeight, "Display surface height")
	regionsEditCmd.Flags().String("save-as", "", "Save the result as a named template")
	regionsEditCmd.Flags().StringSlice("name", nil, "Names for drawn regions, in drawing order")
	regionsEditCmd.Flags().String("snapshot", "", "Render the edited frame, including an unfinished draw, to this image")
	regionsEditCmd.Flags().Bool("json", false, "Print the region summary as JSON")
	regionsEditCmd.MarkFlagRequired("input")

	// Regions preview flags
	regionsPreviewCmd.Flags().StringP("input", "i", "", "Video the still frame is taken from")
	regionsPreviewCmd.Flags().Float64("timestamp", 0, "Still frame position in seconds")
	regionsPreviewCmd.Flags().StringP("template", "t", "", "Saved template name")
	regionsPreviewCmd.Flags().StringP("regions", "r", "", "Crop file with regions (overrides --template)")
	regionsPreviewCmd.Flags().StringP("output", "o", "preview.png", "Output image path")
	regionsPreviewCmd.Flags().String("highlight", "", "Region drawn with resize handles")
	regionsPreviewCmd.Flags().Int("width", config.DefaultSurfaceWidth, "Display surface width")
	regionsPreviewCmd.Flags().Int("height", config.DefaultSurfaceHeight, "Display surface height")
	regionsPreviewCmd.MarkFlagRequired("input")

	// Regions validate flags
	regionsValidateCmd.Flags().StringP("template", "t", "", "Saved template name")
	regionsValidateCmd.Flags().StringP("regions", "r", "", "Crop file with regions (overrides --template)")
	regionsValidateCmd.Flags().StringP("input", "i", "", "Video the regions must fit in")

	regionsCmd.AddCommand(regionsEditCmd, regionsPreviewCmd, regionsValidateCmd)
	templateCmd.AddCommand(templateListCmd, templateShowCmd, templateInfoCmd, templateDeleteCmd, templateExportCmd)
	rootCmd.AddCommand(cropCmd, adjustCmd, splitCmd, snippetCmd, probeCmd, analyzeCmd, regionsCmd, templateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		errColor.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
