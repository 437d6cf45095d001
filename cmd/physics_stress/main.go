// Stress test comparing scene ticks and broad-phase queries across the
// spatial structures
package main

import (
	"collide3d/internal/config"
	"collide3d/internal/engine"
	"collide3d/internal/geom"
	"collide3d/internal/physics"
	"collide3d/internal/spatial"
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	tickIterations  = 10
	queryIterations = 10
	dt              = float32(1.0 / 60.0)
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "physics config file")
	countsFlag := flag.String("counts", "100,500,1000,2000,5000", "comma separated body counts")
	seed := flag.Uint64("seed", 42, "random seed for body placement")
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

	testCounts, err := parseCounts(*countsFlag)
	if err != nil {
		slog.Error("bad -counts", "err", err)
		os.Exit(2)
	}

	fmt.Printf("gravity %v | hash spacing %.1f | octree depth %d cap %d\n\n",
		cfg.Gravity, cfg.SpatialHashSpacing, cfg.OctreeMaxDepth, cfg.OctreeLeafCapacity)

	for _, count := range testCounts {
		testTick(cfg, count, *seed)
	}
	fmt.Println()
	for _, count := range testCounts {
		testBroadPhase(cfg, count, *seed)
	}
}

func parseCounts(s string) ([]int, error) {
	var counts []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("count %q: %w", part, err)
		}
		if n <= 0 {
			return nil, fmt.Errorf("count %d must be positive", n)
		}
		counts = append(counts, n)
	}
	return counts, nil
}

// spawnBodies scatters boxes in a cube whose size grows with count so the
// density stays roughly the same.
func spawnBodies(count int, seed uint64) []*physics.Body {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	spawnSize := float32(50.0) + float32(count)/100.0

	bodies := make([]*physics.Body, count)
	for i := range bodies {
		size := 0.5 + rng.Float32()
		g := engine.NewMeshObject(fmt.Sprintf("box%d", i),
			geom.NewAABBFromCenter(rl.Vector3{}, rl.Vector3{X: size, Y: size, Z: size}))
		g.Transform.Position = rl.Vector3{
			X: rng.Float32()*spawnSize - spawnSize/2,
			Y: rng.Float32() * spawnSize,
			Z: rng.Float32()*spawnSize - spawnSize/2,
		}
		b := physics.NewBody(g)
		b.AffectedByGravity = true
		b.Integrator = physics.IntegratorSemiImplicitEuler
		bodies[i] = b
	}
	return bodies
}

func testTick(cfg config.Physics, count int, seed uint64) {
	p := physics.New(cfg)
	p.Construct()
	defer p.Destroy()

	ground := physics.NewPlaneBody(engine.NewGameObject("ground"), rl.Vector3{Y: 1}, 1000, 0.1)
	p.Register(ground)
	for _, b := range spawnBodies(count, seed) {
		p.Register(b)
	}

	// Warm up
	p.Tick(dt)

	start := time.Now()
	var stats physics.Stats
	for i := 0; i < tickIterations; i++ {
		stats = p.Tick(dt)
	}
	tickTime := time.Since(start) / tickIterations

	fmt.Printf("%5d bodies: tick %10v | %8d pair tests | %6d collisions | %5d new contacts\n",
		count, tickTime.Round(time.Microsecond), stats.PairTests, stats.Collisions, stats.Contacts)
}

type result struct {
	name  string
	build time.Duration
	query time.Duration
	pairs int
}

func testBroadPhase(cfg config.Physics, count int, seed uint64) {
	bodies := spawnBodies(count, seed)
	objects := make([]spatial.Testable, len(bodies))
	region := geom.EmptyAABB()
	for i, b := range bodies {
		b.CalculateBounds()
		objects[i] = b
		region = geom.Combine(region, b.Bounds())
	}

	results := []result{
		measure("linear", objects, func() spatial.Testable { return linear(objects) }),
		measure("bvh", objects, func() spatial.Testable {
			t := spatial.NewBVH(rand.New(rand.NewPCG(seed, seed)))
			t.Build(append([]spatial.Testable(nil), objects...))
			return t
		}),
		measure("hash", objects, func() spatial.Testable {
			h := spatial.NewSpatialHash(cfg.SpatialHashSpacing)
			h.Insert(objects...)
			return h
		}),
		measure("octree", objects, func() spatial.Testable {
			o := spatial.NewOctree(region, cfg.OctreeMaxDepth, cfg.OctreeLeafCapacity)
			o.Insert(objects...)
			return o
		}),
	}

	baseline := results[0]
	fmt.Printf("%5d bodies:", count)
	for _, r := range results {
		speedup := float64(baseline.query) / float64(max(r.query, 1))
		fmt.Printf(" %s %8v+%8v (%5d pairs, %.1fx) |",
			r.name, r.build.Round(time.Microsecond), r.query.Round(time.Microsecond), r.pairs, speedup)
	}
	fmt.Println()
}

// measure times building a structure and querying every object's bounds
// against it. Pairs are counted once per unordered pair.
func measure(name string, objects []spatial.Testable, build func() spatial.Testable) result {
	start := time.Now()
	tree := build()
	buildTime := time.Since(start)

	res := spatial.NewQueryResult()
	var pairs int
	start = time.Now()
	for iter := 0; iter < queryIterations; iter++ {
		pairs = 0
		for _, obj := range objects {
			res.Reset()
			tree.Query(obj.Bounds(), res)
			// self is always in the result
			pairs += res.Len() - 1
		}
	}
	queryTime := time.Since(start) / queryIterations

	return result{name: name, build: buildTime, query: queryTime, pairs: pairs / 2}
}

// linear is the naive O(n²) baseline: every query scans every object.
type linearScan []spatial.Testable

func linear(objects []spatial.Testable) spatial.Testable {
	return linearScan(objects)
}

func (l linearScan) Bounds() geom.AABB {
	box := geom.EmptyAABB()
	for _, obj := range l {
		box = geom.Combine(box, obj.Bounds())
	}
	return box
}

func (l linearScan) Query(box geom.AABB, result *spatial.QueryResult) {
	for _, obj := range l {
		obj.Query(box, result)
	}
}

func (l linearScan) Cast(start, end rl.Vector3) spatial.Hit {
	var best spatial.Hit
	for _, obj := range l {
		best = spatial.Closer(best, obj.Cast(start, end))
	}
	return best
}

func (l linearScan) Debug(spatial.Drawer) {}
