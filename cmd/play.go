package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vplayer/vplayer/constant"
	"github.com/vplayer/vplayer/event"
	"github.com/vplayer/vplayer/frame"
	"github.com/vplayer/vplayer/history"
	"github.com/vplayer/vplayer/icon"
	"github.com/vplayer/vplayer/identity"
	"github.com/vplayer/vplayer/key"
	"github.com/vplayer/vplayer/log"
	"github.com/vplayer/vplayer/native"
	"github.com/vplayer/vplayer/native/sim"
	"github.com/vplayer/vplayer/player"
	"github.com/vplayer/vplayer/registry"
	"github.com/vplayer/vplayer/util"
)

type playOptions struct {
	loop   bool
	speed  float64
	volume float64
	seek   time.Duration
	resume bool
	mix    bool
	asJSON bool
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().StringP("asset", "a", "", "Play a file from the assets directory instead of a URI")
	playCmd.Flags().String("package", "", "Package the asset belongs to")
	playCmd.Flags().String("format", "", "Container or manifest format hint")

	playCmd.Flags().Duration("duration", 10*time.Second, "Duration of the simulated media")
	playCmd.Flags().Int("width", 1920, "Decoded width of the simulated media")
	playCmd.Flags().Int("height", 1080, "Decoded height of the simulated media")
	playCmd.Flags().Int("rotation", 0, "Display rotation of the simulated media (0, 90, 180, 270)")
	playCmd.Flags().Duration("tick", 40*time.Millisecond, "Simulated decode interval")
	playCmd.Flags().Uint32("window", 0, "Window surface the streaming engine presents into")

	playCmd.Flags().BoolP("loop", "l", false, "Loop playback")
	playCmd.Flags().Float64P("speed", "s", 1, "Playback speed")
	playCmd.Flags().Float64("volume", 1, "Output volume in [0, 1]")
	playCmd.Flags().Duration("seek", 0, "Start position")
	playCmd.Flags().BoolP("resume", "r", false, "Start from the position saved in history")
	playCmd.Flags().Bool("mix", false, "Mix audio with other applications")
	playCmd.Flags().BoolP("json", "j", false, "Print events as JSON lines")
	playCmd.MarkFlagsMutuallyExclusive("seek", "resume")

	playCmd.Flags().Bool("strict", false, "Fail on calls the engine cannot honor")
	lo.Must0(viper.BindPFlag(key.PlayerStrictCapabilities, playCmd.Flags().Lookup("strict")))
	playCmd.Flags().Bool("emulate-looping", false, "Emulate looping on engines without native looping")
	lo.Must0(viper.BindPFlag(key.PlayerEmulateLooping, playCmd.Flags().Lookup("emulate-looping")))
}

var playCmd = &cobra.Command{
	Use:   "play [uri]",
	Short: "Play a source on a simulated native engine and print its events",
	Long: `Play a source on a simulated native engine and print its events.

File paths and file:// URIs are played by the decoder engine, every other
scheme by the streaming engine. Interrupt with Ctrl+C to dispose early.`,
	Example: constant.App + " play https://cdn.example.com/live/master.m3u8 --seek 5s\n" +
		constant.App + " play --asset intro.mp4 --loop",
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		flags := cmd.Flags()

		src := registry.Source{
			Asset:       lo.Must(flags.GetString("asset")),
			PackageName: lo.Must(flags.GetString("package")),
			FormatHint:  lo.Must(flags.GetString("format")),
		}
		if len(args) > 0 {
			src.URI = args[0]
		}

		media := sim.Media{
			DurationMillis: lo.Must(flags.GetDuration("duration")).Milliseconds(),
			Width:          lo.Must(flags.GetInt("width")),
			Height:         lo.Must(flags.GetInt("height")),
			Rotation:       native.Rotation(lo.Must(flags.GetInt("rotation"))),
		}

		opts := playOptions{
			loop:   lo.Must(flags.GetBool("loop")),
			speed:  lo.Must(flags.GetFloat64("speed")),
			volume: lo.Must(flags.GetFloat64("volume")),
			seek:   lo.Must(flags.GetDuration("seek")),
			resume: lo.Must(flags.GetBool("resume")),
			mix:    lo.Must(flags.GetBool("mix")),
			asJSON: lo.Must(flags.GetBool("json")),
		}

		frames := frame.NewMemory()
		reg := registry.New(player.Env{
			Platform: sim.NewPlatform(media, sim.WithAuto(lo.Must(flags.GetDuration("tick")))),
			Frames:   frames,
			Identity: identity.FromConfig(),
			Window:   native.WindowID(lo.Must(flags.GetUint32("window"))),
			Settings: player.SettingsFromConfig(),
		})

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		handleErr(play(ctx, newPrinter(os.Stdout, opts.asJSON), reg, frames, src, opts))
	},
}

func play(ctx context.Context, out *printer, reg *registry.Registry, frames *frame.Memory, src registry.Source, opts playOptions) error {
	h, err := reg.Create(src, player.Options{MixWithOthers: opts.mix})
	if err != nil {
		return err
	}
	defer func() {
		if err := reg.Dispose(h); err != nil {
			log.Warnf("dispose player %s: %v", h, err)
		}
	}()

	engine, err := reg.Get(h)
	if err != nil {
		return err
	}

	events, err := engine.Events().Listen()
	if err != nil {
		return err
	}

	// seek completions arrive on a native goroutine; they are printed from this loop
	seeked := make(chan time.Duration, 1)

	for {
		select {
		case <-ctx.Done():
			out.note(icon.Warn, "interrupted at %s", position(engine))
			return nil
		case target := <-seeked:
			out.note(icon.Search, "seeked to %s", target)
		case m, ok := <-events:
			if !ok {
				return nil
			}
			out.event(m)

			switch m.Event {
			case event.Initialized:
				if err := start(reg, h, engine, opts, seeked); err != nil {
					return err
				}
			case event.Completed:
				if texture, ok := frames.Texture(int64(h)); ok && texture.Frames() > 0 {
					out.note(icon.Frame, "%s rendered", util.Quantify(int(texture.Frames()), "frame", "frames"))
				}
				if !opts.loop {
					return nil
				}
			case event.Error:
				return fmt.Errorf("%s: %s", m.Code, m.Message)
			}
		}
	}
}

// start applies the requested controls once the engine is ready, then plays.
func start(reg *registry.Registry, h player.Handle, engine player.Engine, opts playOptions, seeked chan<- time.Duration) error {
	if opts.loop {
		if err := engine.SetLooping(true); err != nil {
			return err
		}
	}
	if opts.volume != 1 {
		if err := engine.SetVolume(opts.volume); err != nil {
			return err
		}
	}
	if opts.speed != 1 {
		if err := engine.SetPlaybackSpeed(opts.speed); err != nil {
			return err
		}
	}

	target, err := startPosition(reg, h, opts)
	if err != nil {
		return err
	}
	if target > 0 {
		err := engine.SeekTo(target.Milliseconds(), func() {
			select {
			case seeked <- target:
			default:
			}
		})
		if err != nil {
			return err
		}
	}

	return engine.Play()
}

func startPosition(reg *registry.Registry, h player.Handle, opts playOptions) (time.Duration, error) {
	if !opts.resume {
		return opts.seek, nil
	}

	location, err := reg.Location(h)
	if err != nil {
		return 0, err
	}

	saved, err := history.Lookup(location)
	if err != nil {
		return 0, err
	}

	entry, ok := saved.Get()
	if !ok {
		log.Infof("no saved position for %s", location)
		return 0, nil
	}
	return time.Duration(entry.PositionMillis) * time.Millisecond, nil
}

func position(engine player.Engine) string {
	ms, err := engine.Position()
	if err != nil {
		if errors.Is(err, player.ErrInvalidStateForQuery) {
			return engine.State().String()
		}
		return "unknown position"
	}
	return (time.Duration(ms) * time.Millisecond).String()
}
