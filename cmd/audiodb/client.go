package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
)

// runClient speaks the RPC surface's two operations (spec.md §6) against
// a remote audiodb server: status(dbName) when no query type is given,
// query(...) otherwise.
func runClient(addr, queryType, dbName, key, keyList, timesPath string, qpoint, pointNN, resultLength, sequenceLength, sequenceHop int) error {
	base := "http://" + addr

	if queryType == "" {
		resp, err := http.Get(base + "/status?dbName=" + dbName)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		var out struct {
			Result int `json:"result"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return err
		}
		fmt.Println(out.Result)
		return nil
	}

	reqBody := struct {
		DBName        string `json:"dbName"`
		QKey          string `json:"qKey"`
		KeyList       string `json:"keyList"`
		TimesFileName string `json:"timesFileName"`
		QType         string `json:"qType"`
		QPos          int    `json:"qPos"`
		PointNN       int    `json:"pointNN"`
		SegNN         int    `json:"segNN"`
		SeqLen        int    `json:"seqLen"`
		SequenceHop   int    `json:"sequenceHop"`
	}{
		DBName:        dbName,
		QKey:          key,
		KeyList:       keyList,
		TimesFileName: timesPath,
		QType:         queryType,
		QPos:          qpoint,
		PointNN:       pointNN,
		SegNN:         resultLength,
		SeqLen:        sequenceLength,
		SequenceHop:   sequenceHop,
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return err
	}

	resp, err := http.Post(base+"/query", "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var out struct {
		Rlist []string  `json:"Rlist"`
		Dist  []float64 `json:"Dist"`
		Qpos  []int     `json:"Qpos"`
		Spos  []int     `json:"Spos"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return err
	}
	for i := range out.Rlist {
		fmt.Printf("%s %v %d %d\n", out.Rlist[i], out.Dist[i], out.Qpos[i], out.Spos[i])
	}
	return nil
}
