package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"log"
	"math"
	"math/rand"
	"net/http"
	"strconv"
	"sync"
	"time"

	sse "github.com/alexandrevicenzi/go-sse"
	"github.com/gorilla/mux"
	"github.com/mastercactapus/planefunc/coord"
	"github.com/mastercactapus/planefunc/meshlevel"
)

const (
	maxTerrainPoints = 100000
	maxNeighbours    = 10000
)

type api struct {
	http.Handler
	cfg Config
	sse *sse.Server

	mx   sync.Mutex
	rng  *rand.Rand
	walk coord.PlaneFunction

	stop chan struct{}
	done chan struct{}
}

func newAPI(rng *rand.Rand, cfg Config) *api {
	r := mux.NewRouter()

	a := &api{
		Handler: r,
		cfg:     cfg,
		rng:     rng,
		walk:    coord.DefaultPlaneFunction(),
		sse: sse.NewServer(&sse.Options{
			Logger: log.New(ioutil.Discard, "", 0),
		}),
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}

	r.HandleFunc("/api/function", a.function).Methods("GET")
	r.HandleFunc("/api/neighbour", a.neighbour).Methods("POST")
	r.HandleFunc("/api/distance", a.distance).Methods("GET")
	r.HandleFunc("/api/terrain", a.terrain).Methods("GET")
	r.PathPrefix("/events/").Handler(a.sse)

	go a.loop()

	return a
}

// Close stops the walk and disconnects event listeners.
func (a *api) Close() {
	close(a.stop)
	<-a.done
	a.sse.Shutdown()
}

func (a *api) loop() {
	defer close(a.done)
	t := time.NewTicker(a.cfg.walkInterval())
	defer t.Stop()
	for {
		select {
		case <-a.stop:
			return
		case <-t.C:
		}
		f, err := a.step()
		if err != nil {
			log.Printf("ERROR: walk step: %+v", err)
			continue
		}
		data, err := json.Marshal(f)
		if err != nil {
			log.Printf("ERROR: marshal json: %+v", err)
			continue
		}
		a.sse.SendMessage("/events/walk", sse.SimpleMessage(string(data)))
	}
}

// step moves the walk to a neighbour of its current function at the origin.
// On error the walk stays where it is.
func (a *api) step() (coord.PlaneFunction, error) {
	a.mx.Lock()
	defer a.mx.Unlock()
	g, err := a.walk.Neighbour(a.rng, 0, 0, a.cfg.Generator.DeltaZ, a.cfg.Generator.DeltaAngle)
	if err != nil {
		return a.walk, err
	}
	a.walk = g
	return g, nil
}

// withRand runs fn while holding the shared random source.
func (a *api) withRand(fn func(rng *rand.Rand)) {
	a.mx.Lock()
	defer a.mx.Unlock()
	fn(a.rng)
}

// formParser reads float parameters, keeping the first error.
type formParser struct {
	req *http.Request
	err error
}

func (p *formParser) float(param string, def float64) float64 {
	if p.err != nil {
		return def
	}
	s := p.req.FormValue(param)
	if s == "" {
		return def
	}
	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		p.err = err
		return def
	}
	if math.IsNaN(val) || math.IsInf(val, 0) {
		p.err = fmt.Errorf("%s: not a finite number", param)
		return def
	}
	return val
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		log.Println("ERROR: encode:", err)
	}
}

func httpStatus(err error) int {
	switch {
	case errors.Is(err, coord.ErrDegenerateNormal),
		errors.Is(err, coord.ErrNonFunctionPlane),
		errors.Is(err, coord.ErrInvalidTilt),
		errors.Is(err, coord.ErrInvalidAngle),
		errors.Is(err, coord.ErrNonFinite),
		errors.Is(err, meshlevel.ErrGridTooLarge):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (a *api) function(w http.ResponseWriter, req *http.Request) {
	g := a.cfg.Generator
	p := &formParser{req: req}
	x := p.float("x", 0)
	y := p.float("y", 0)
	minZ := p.float("minZ", g.MinZ)
	maxZ := p.float("maxZ", g.MaxZ)
	minAngle := p.float("minAngle", g.MinAngle)
	maxAngle := p.float("maxAngle", g.MaxAngle)
	if p.err != nil {
		http.Error(w, p.err.Error(), http.StatusBadRequest)
		return
	}

	var f coord.PlaneFunction
	var err error
	a.withRand(func(rng *rand.Rand) {
		err = f.SetRandomFunction(rng, x, y, minZ, maxZ, minAngle, maxAngle)
	})
	if err != nil {
		http.Error(w, err.Error(), httpStatus(err))
		return
	}
	writeJSON(w, f)
}

type neighbourRequest struct {
	Function *coord.PlaneFunction
	X, Y     float64

	// DeltaZ is used unless both MinZ and MaxZ are set.
	DeltaZ     *float64
	MinZ, MaxZ *float64
	DeltaAngle *float64
	Count      int
}

func (a *api) neighbour(w http.ResponseWriter, req *http.Request) {
	var r neighbourRequest
	err := json.NewDecoder(req.Body).Decode(&r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if r.Function == nil {
		http.Error(w, "missing function", http.StatusBadRequest)
		return
	}
	if r.Count > maxNeighbours {
		http.Error(w, "too many neighbours", http.StatusBadRequest)
		return
	}
	if r.Count <= 0 {
		r.Count = 1
	}
	deltaZ := a.cfg.Generator.DeltaZ
	if r.DeltaZ != nil {
		deltaZ = *r.DeltaZ
	}
	deltaAngle := a.cfg.Generator.DeltaAngle
	if r.DeltaAngle != nil {
		deltaAngle = *r.DeltaAngle
	}

	f := *r.Function
	res := make([]coord.PlaneFunction, r.Count)
	a.withRand(func(rng *rand.Rand) {
		for i := range res {
			if r.MinZ != nil && r.MaxZ != nil {
				res[i], err = f.NeighbourInRange(rng, r.X, r.Y, *r.MinZ, *r.MaxZ, deltaAngle)
			} else {
				res[i], err = f.Neighbour(rng, r.X, r.Y, deltaZ, deltaAngle)
			}
			if err != nil {
				return
			}
		}
	})
	if err != nil {
		http.Error(w, err.Error(), httpStatus(err))
		return
	}
	writeJSON(w, res)
}

func (a *api) distance(w http.ResponseWriter, req *http.Request) {
	p := &formParser{req: req}
	pl, err := coord.NewPlane(p.float("a", 0), p.float("b", 0), p.float("c", 0), p.float("d", 0))
	pt := coord.Point{X: p.float("x", 0), Y: p.float("y", 0), Z: p.float("z", 0)}
	if p.err != nil {
		http.Error(w, p.err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), httpStatus(err))
		return
	}

	closest, normal := pl.PointAndNorm()
	writeJSON(w, struct {
		Plane    coord.Plane
		Distance float64
		Closest  coord.Point
		Normal   coord.Point
	}{pl, pl.Distance(pt), closest, normal})
}

func (a *api) terrain(w http.ResponseWriter, req *http.Request) {
	g := a.cfg.Generator
	p := &formParser{req: req}
	opt := meshlevel.TerrainOptions{
		GridOptions: meshlevel.GridOptions{
			X:           p.float("x", 0),
			Y:           p.float("y", 0),
			DistanceX:   p.float("distX", 10),
			DistanceY:   p.float("distY", 10),
			Granularity: p.float("granularity", 1),
		},
		DeltaZ:     p.float("deltaZ", g.DeltaZ),
		DeltaAngle: p.float("deltaAngle", g.DeltaAngle),
	}
	if p.err != nil {
		http.Error(w, p.err.Error(), http.StatusBadRequest)
		return
	}
	size, err := opt.Size()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if size > maxTerrainPoints {
		http.Error(w, "grid too large", http.StatusBadRequest)
		return
	}

	cx := opt.X + opt.DistanceX/2
	cy := opt.Y + opt.DistanceY/2
	var base coord.PlaneFunction
	var pts []coord.Point
	a.withRand(func(rng *rand.Rand) {
		err = base.SetRandomFunction(rng, cx, cy, g.MinZ, g.MaxZ, g.MinAngle, g.MaxAngle)
		if err != nil {
			return
		}
		pts, err = meshlevel.Terrain(rng, base, opt)
	})
	if err != nil {
		http.Error(w, err.Error(), httpStatus(err))
		return
	}

	if req.FormValue("relative") == "1" {
		pts = meshlevel.OffsetFrom(base.Z(cx, cy), pts)
	}

	switch req.FormValue("format") {
	case "geojson":
		writeJSON(w, meshlevel.PointsGeoJSON(pts))
	case "mesh":
		mesh, err := meshlevel.NewMesh(pts)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, mesh.GeoJSON())
	default:
		writeJSON(w, struct {
			Base   coord.PlaneFunction
			Points []coord.Point
		}{base, pts})
	}
}
