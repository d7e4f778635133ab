package main

import (
	"encoding/json"
	"flag"
	"io"
	"log"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/mastercactapus/planefunc/coord"
)

func main() {
	log.SetFlags(log.Lshortfile)

	cfg := defaultConfig()
	configFile := flag.String("config", "", "INI config file to read before applying flags.")
	apply := bindFlags(flag.CommandLine, &cfg)
	flag.Parse()

	if *configFile != "" {
		err := readConfig(*configFile, &cfg)
		if err != nil {
			log.Fatal(err)
		}
	}
	apply()

	err := cfg.validate()
	if err != nil {
		log.Fatal(err)
	}

	seed := cfg.Generator.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	if cfg.Server.Addr == "" {
		err = printFunctions(os.Stdout, rng, cfg.Generator)
		if err != nil {
			log.Fatal(err)
		}
		return
	}

	a := newAPI(rng, cfg)
	defer a.Close()

	log.Printf("seed %d, listening on %s", seed, cfg.Server.Addr)
	err = http.ListenAndServe(cfg.Server.Addr, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "*")
		log.Printf("%s %s - %s", req.Method, req.URL.Path, req.RemoteAddr)
		a.ServeHTTP(w, req)
	}))
	if err != nil {
		log.Fatal(err)
	}
}

type generated struct {
	Function   coord.PlaneFunction
	Neighbours []coord.PlaneFunction
}

// printFunctions writes one random function through the z axis and its
// neighbours at the origin as JSON.
func printFunctions(w io.Writer, rng *rand.Rand, cfg GeneratorConfig) error {
	var res generated
	err := res.Function.SetRandomFunction(rng, 0, 0, cfg.MinZ, cfg.MaxZ, cfg.MinAngle, cfg.MaxAngle)
	if err != nil {
		return err
	}
	res.Neighbours = make([]coord.PlaneFunction, cfg.Neighbours)
	for i := range res.Neighbours {
		res.Neighbours[i], err = res.Function.Neighbour(rng, 0, 0, cfg.DeltaZ, cfg.DeltaAngle)
		if err != nil {
			return err
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
