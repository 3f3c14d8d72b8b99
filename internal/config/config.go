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

package config

import (
	"encoding/json"
	"errors"
	"io"
	"os"

	"Unbewohnte/BiasLens/internal/inference"
	"Unbewohnte/BiasLens/internal/spreadsheet"
)

var CONFIG_PATH string = ""

type Config struct {
	Port                uint               `json:"port"`
	DatabaseFile        string             `json:"database_file"`
	LogsFile            string             `json:"logs_file"`
	OllamaModel         string             `json:"ollama_model"`
	QueryTimeoutSeconds uint               `json:"query_timeout_seconds"`
	Prompts             inference.Prompts  `json:"prompts"`
	MaxContentSize      uint               `json:"max_content_size"`
	Debug               bool               `json:"debug"`
	PushToGoogleSheet   bool               `json:"push_to_google_sheet"`
	SheetConfig         spreadsheet.Config `json:"sheet_config"`
	CredentialsFile     string             `json:"credentials_file"`
}

func Default() *Config {
	return &Config{
		Port:                8080,
		DatabaseFile:        "biaslens.sqlite3",
		LogsFile:            "biaslens.log",
		OllamaModel:         "lakomoor/vikhr-llama-3.2-1b-instruct:1b",
		QueryTimeoutSeconds: 120,
		Prompts:             inference.DefaultPrompts(),
		MaxContentSize:      64000,
		Debug:               false,
		PushToGoogleSheet:   false,
		SheetConfig: spreadsheet.NewConfig(
			nil, "spreadsheet_id", "Sheet 1",
		),
		CredentialsFile: "secret.json",
	}
}

func (conf *Config) Save(filepath string) error {
	file, err := os.OpenFile(filepath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.ModePerm)
	if err != nil {
		return err
	}
	defer file.Close()

	// Keep the sheet credentials out of the config file
	c := *conf
	c.SheetConfig.CredentialsJSON = nil

	jsonBytes, err := json.MarshalIndent(&c, "", "\t")
	if err != nil {
		return err
	}

	_, err = file.Write(jsonBytes)

	// Remember where it was saved
	CONFIG_PATH = filepath

	return err
}

func From(filepath string) (*Config, error) {
	file, err := os.Open(filepath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	contents, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	var conf Config
	err = json.Unmarshal(contents, &conf)
	if err != nil {
		return nil, err
	}

	// Remember where it came from
	CONFIG_PATH = filepath

	return &conf, nil
}

// Rewrites the configuration file it was loaded from.
func (conf *Config) Update() error {
	if CONFIG_PATH == "" {
		return errors.New("configuration file path is unknown")
	}

	return conf.Save(CONFIG_PATH)
}
