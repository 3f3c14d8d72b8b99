/*
   BiasLens - news summarizer and bias detector
   Copyright (C) 2026  Unbewohnte (Kasyanov Nikolay Alexeevich)

   This program is free software: you can redistribute it and/or modify
   it under the terms of the GNU General Public License as published by
   the Free Software Foundation, either version 3 of the License, or
   (at your option) any later version.

   This program is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
   GNU General Public License for more details.

   You should have received a copy of the GNU General Public License
   along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"Unbewohnte/BiasLens/internal/config"
	"Unbewohnte/BiasLens/internal/db"
	"Unbewohnte/BiasLens/internal/fetch"
	"Unbewohnte/BiasLens/internal/inference"
	"Unbewohnte/BiasLens/internal/service"
	"Unbewohnte/BiasLens/internal/spreadsheet"
	"Unbewohnte/BiasLens/internal/web"
)

const CONFIG_NAME string = "config.json"

var (
	CONFIG *config.Config
)

func init() {
	var err error
	CONFIG, err = config.From(CONFIG_NAME)
	if err != nil {
		log.Println("Could not open configuration file: " + err.Error() + ". Creating a new one...")
		CONFIG = config.Default()
		err = CONFIG.Save(CONFIG_NAME)
		if err != nil {
			log.Panic("Failed to create a new configuration file: " + err.Error())
		}
		os.Exit(0)
	}

	logsFile, err := os.Create(CONFIG.LogsFile)
	if err != nil {
		log.Panic("Failed to create logs file: " + err.Error())
	}
	log.SetOutput(io.MultiWriter(logsFile, os.Stdout))

	if CONFIG.PushToGoogleSheet {
		file, err := os.Open(CONFIG.CredentialsFile)
		if err != nil {
			log.Panic(err)
		}
		defer file.Close()

		credentialsJSON, err := io.ReadAll(file)
		if err != nil {
			log.Panic(err)
		}

		CONFIG.SheetConfig.CredentialsJSON = credentialsJSON
	}
}

func main() {
	database, err := db.NewDB(CONFIG.DatabaseFile)
	if err != nil {
		log.Panic("Failed to open database: " + err.Error())
	}
	defer database.Close()

	llm, err := inference.NewClient(CONFIG.OllamaModel, CONFIG.Prompts, CONFIG.QueryTimeoutSeconds)
	if err != nil {
		log.Panic("Failed to create an ollama client: " + err.Error())
	}

	models, err := llm.ListModels(context.Background())
	if err != nil {
		log.Printf("Warning: could not reach ollama: %s", err)
	} else {
		var names []string
		for _, model := range models {
			names = append(names, model.Name)
		}
		log.Printf("Available models: %s", strings.Join(names, ", "))
	}

	var publisher service.Publisher
	if CONFIG.PushToGoogleSheet {
		sheetsClient, err := spreadsheet.NewGoogleSheetsClient(context.Background(), CONFIG.SheetConfig)
		if err != nil {
			log.Panic("Failed to create a Google Sheets client: " + err.Error())
		}
		publisher = sheetsClient
	}

	svc := service.New(service.Deps{
		Store:      database,
		Fetcher:    fetch.New(CONFIG.MaxContentSize, CONFIG.Debug),
		Summarizer: llm,
		Classifier: llm,
		Publisher:  publisher,
	})

	server, err := web.NewServer(svc, CONFIG.Port, CONFIG.LogsFile)
	if err != nil {
		log.Panic("Failed to create the web server: " + err.Error())
	}

	srv := server.HTTPServer()

	go func() {
		log.Printf("Listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Panic("Web server error: " + err.Error())
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %s", err)
	}
}
