package main

import (
	"github.com/rs/zerolog/log"

	"pickomino/experiments"
	"pickomino/logger"
)

func main() {
	logger.Init()

	records, summaries, err := experiments.RunSpeedup(experiments.DefaultConfigs())
	if err != nil {
		log.Fatal().Err(err).Msg("Speedup experiment failed")
	}

	writer, err := experiments.NewWriter()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create experiment writer")
	}
	if err := writer.WriteRunRecords(records); err != nil {
		log.Fatal().Err(err).Msg("Failed to write run records")
	}
	if err := writer.WriteSummaries(summaries); err != nil {
		log.Fatal().Err(err).Msg("Failed to write summaries")
	}

	log.Info().Msg("Finished speedup experiment")
}
