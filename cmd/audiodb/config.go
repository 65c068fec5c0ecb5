package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/smhanov/audiodb/server"
	"github.com/spf13/viper"
)

func newStderrLogger() *log.Logger {
	return log.New(os.Stderr, "audiodb: ", log.LstdFlags)
}

// runServer starts the RPC surface (spec.md §6) on serverPort, with its
// data folder and JWT secret layered the way the reference CLI layers
// its own --serve configuration: flag > env > config file > default.
func runServer(dbPath string, serverPort int, verbosity int) error {
	if serverPort < 100 || serverPort > 100000 {
		return fmt.Errorf("server port must be in [100, 100000]")
	}

	viper.SetDefault("data_folder", "./data")
	if dbPath != "" {
		viper.Set("data_folder", dbPath)
	}
	viper.SetDefault("jwt_secret", "")
	viper.SetEnvPrefix("audiodb")
	viper.AutomaticEnv()

	viper.SetConfigName("audiodb.conf")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc")
	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "audiodb: using defaults and environment (%v)\n", err)
	}

	dataFolder := viper.GetString("data_folder")
	if err := os.MkdirAll(dataFolder, 0755); err != nil {
		return fmt.Errorf("create data folder: %v", err)
	}

	secret := viper.GetString("jwt_secret")
	s := server.New(dataFolder, []byte(secret))

	addr := ":" + strconv.Itoa(serverPort)
	if verbosity > 0 {
		fmt.Fprintf(os.Stderr, "audiodb: serving %s on %s\n", dataFolder, addr)
	}
	return http.ListenAndServe(addr, s.Handler())
}
