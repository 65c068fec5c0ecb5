// Command audiodb is the CLI shell over the db and server packages: one
// process, one mutually-exclusive command flag, matching the reference
// implementation's single-binary-many-modes shape.
package main

import (
	"fmt"
	"os"

	"github.com/smhanov/audiodb/db"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "audiodb: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		dbPath    string
		verbosity int

		cmdNew         bool
		cmdStatus      bool
		cmdDump        bool
		cmdL2Norm      bool
		cmdInsert      bool
		cmdUpdate      bool
		cmdBatchInsert bool
		queryType      string

		featurePath string
		timesPath   string
		key         string

		featureList string
		timesList   string
		keyList     string

		qpoint         int
		exhaustive     bool
		pointNN        int
		resultLength   int
		sequenceLength int
		sequenceHop    int
		radius         int
		expandFactor   int
		rotate         bool

		serverPort int
		clientAddr string
	)

	pflag.StringVarP(&dbPath, "d", "d", "", "database file path")
	pflag.IntVarP(&verbosity, "v", "v", 0, "verbosity 0-10")

	pflag.BoolVarP(&cmdNew, "N", "N", false, "create a new database")
	pflag.BoolVarP(&cmdStatus, "S", "S", false, "print database status")
	pflag.BoolVarP(&cmdDump, "D", "D", false, "dump every key and its vector count")
	pflag.BoolVarP(&cmdL2Norm, "L", "L", false, "L2-normalize the database in place")
	pflag.BoolVarP(&cmdInsert, "I", "I", false, "insert one feature file")
	pflag.BoolVarP(&cmdUpdate, "U", "U", false, "update (reserved)")
	pflag.BoolVarP(&cmdBatchInsert, "B", "B", false, "insert a batch of feature files")
	pflag.StringVarP(&queryType, "Q", "Q", "", "run a query: point, segment, or sequence")

	pflag.StringVarP(&featurePath, "f", "f", "", "feature file path")
	pflag.StringVarP(&timesPath, "t", "t", "", "times file path")
	pflag.StringVarP(&key, "k", "k", "", "key for the inserted segment")

	pflag.StringVarP(&featureList, "F", "F", "", "batch feature-file list path")
	pflag.StringVarP(&timesList, "T", "T", "", "batch times-file list path")
	pflag.StringVarP(&keyList, "K", "K", "", "batch key list path, or query key restriction list")

	pflag.IntVarP(&qpoint, "p", "p", 0, "query point index (0-10000)")
	pflag.BoolVarP(&exhaustive, "e", "e", false, "exhaustive query (every query vector, not just qpoint)")
	pflag.IntVarP(&pointNN, "n", "n", 10, "point-query neighbor count (1-1000)")
	pflag.IntVarP(&resultLength, "r", "r", 10, "result length, maps to segNN for segment queries")
	pflag.IntVarP(&sequenceLength, "l", "l", 16, "sequence-query shingle length (1-1000)")
	pflag.IntVarP(&sequenceHop, "h", "h", 1, "sequence-query hop (1-1000)")
	pflag.IntVarP(&radius, "R", "R", 0, "radius (reserved)")
	pflag.IntVarP(&expandFactor, "x", "x", 0, "expand factor (reserved)")
	pflag.BoolVarP(&rotate, "o", "o", false, "rotate (reserved)")

	pflag.IntVarP(&serverPort, "s", "s", 0, "run as RPC server on this port (100-100000)")
	pflag.StringVarP(&clientAddr, "c", "c", "", "run as client against host:port")

	pflag.Parse()

	if serverPort != 0 {
		return runServer(dbPath, serverPort, verbosity)
	}
	if clientAddr != "" {
		return runClient(clientAddr, queryType, dbPath, key, keyList, timesPath, qpoint, pointNN, resultLength, sequenceLength, sequenceHop)
	}

	commands := 0
	for _, b := range []bool{cmdNew, cmdStatus, cmdDump, cmdL2Norm, cmdInsert, cmdUpdate, cmdBatchInsert, queryType != ""} {
		if b {
			commands++
		}
	}
	if commands != 1 {
		return fmt.Errorf("exactly one of -N -S -D -L -I -U -B -Q must be given")
	}
	if dbPath == "" {
		return fmt.Errorf("-d <file> is required")
	}

	if cmdNew {
		h, err := db.Create(dbPath, db.DefaultDBSize)
		if err != nil {
			return err
		}
		return h.Close()
	}

	h, err := db.Open(dbPath)
	if err != nil {
		return err
	}
	defer h.Close()
	h.Verbosity = verbosity
	if verbosity > 0 {
		h.Logger = newStderrLogger()
	}

	switch {
	case cmdStatus:
		return printStatus(h, sequenceLength)
	case cmdDump:
		return printDump(h)
	case cmdL2Norm:
		return h.L2Norm(nil)
	case cmdInsert:
		return h.Insert(featurePath, db.InsertOptions{Key: key, TimesPath: timesPath})
	case cmdUpdate:
		return fmt.Errorf("-U (update) is reserved and not implemented")
	case cmdBatchInsert:
		return h.BatchInsert(db.BatchInsertOptions{FeatureList: featureList, KeyList: keyList, TimesList: timesList})
	case queryType != "":
		opts := db.QueryOptions{
			QueryFile:      featurePath,
			TimesPath:      timesPath,
			KeyList:        keyList,
			QPoint:         qpoint,
			Exhaustive:     exhaustive,
			PointNN:        pointNN,
			SegNN:          resultLength,
			SequenceLength: sequenceLength,
			SequenceHop:    sequenceHop,
		}
		return runQuery(h, queryType, opts, resultLength)
	}

	return nil
}

func runQuery(h *db.DB, queryType string, opts db.QueryOptions, resultLength int) error {
	var (
		results []db.Result
		err     error
	)
	switch queryType {
	case "point":
		results, err = h.QueryPoint(opts)
	case "segment":
		results, err = h.QuerySegment(opts)
	case "sequence":
		results, err = h.QuerySequence(opts)
	default:
		err = db.ErrUnknownQueryType
	}
	if err != nil {
		return err
	}
	if len(results) > resultLength {
		results = results[:resultLength]
	}
	for _, res := range results {
		fmt.Printf("%s %v %d %d\n", res.Key, res.Distance, res.QPos, res.SPos)
	}
	return nil
}

func printStatus(h *db.DB, sequenceLength int) error {
	st := h.Status(sequenceLength)
	fmt.Printf("numFiles: %d\n", st.NumFiles)
	fmt.Printf("dim: %d\n", st.Dim)
	fmt.Printf("totalVectors: %d\n", st.TotalVectors)
	fmt.Printf("capacityVectors: %d\n", st.CapacityVectors)
	fmt.Printf("freeVectors: %d\n", st.FreeVectors)
	fmt.Printf("freeBytes: %d\n", st.FreeBytes)
	fmt.Printf("percentFull: %.2f\n", st.PercentFull)
	fmt.Printf("l2Normed: %v\n", st.L2Normed)
	fmt.Printf("timestamped: %v\n", st.Timestamped)
	fmt.Printf("emptyKeys: %d\n", st.EmptyKeys)
	fmt.Printf("shortKeys: %d\n", st.ShortKeys)
	return nil
}

func printDump(h *db.DB) error {
	for _, e := range h.Dump() {
		fmt.Printf("%s %d\n", e.Key, e.NumVectors)
	}
	return nil
}
