// Interactive viewer for the physics scene: drop boxes onto a ground plane
// and a mesh ramp, poke them with the mouse, inspect bounds and the BVH.
package main

import (
	"collide3d/internal/config"
	"flag"
	"log/slog"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "physics config file")
	seed := flag.Uint64("seed", 1, "random seed for spawned boxes")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Warn("using default config", "path", *configPath, "err", err)
	}

	rl.SetConfigFlags(rl.FlagWindowHighdpi | rl.FlagMsaa4xHint)
	rl.InitWindow(1280, 720, "collide3d viewer")
	defer rl.CloseWindow()
	rl.SetTargetFPS(120)

	v := newViewer(cfg, *seed)
	defer v.Close()

	for !rl.WindowShouldClose() {
		v.Update(rl.GetFrameTime())
		v.Draw()
	}
}
