package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"pdfshrink/internal/domain/entities"
	infraRepos "pdfshrink/internal/infrastructure/repositories"
	"pdfshrink/internal/interface/controllers"
)

var (
	compressPercent int
	compressLimitMB int
	compressOutput  string
	paramsPercent   int
)

var compressCmd = &cobra.Command{
	Use:   "compress <input.pdf>",
	Short: "Сжать PDF на процент или под лимит размера",
	Long: `Сжимает один PDF. --percent задает процент сжатия (10-90),
--limit-mb ищет первые параметры, при которых файл не больше лимита.
Без флагов процент спрашивается интерактивно.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCompress(cmd, jobFromFlags(cmd, args[0]))
	},
}

var paramsCmd = &cobra.Command{
	Use:   "params",
	Short: "Показать DPI и качество JPEG для процента сжатия",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		appConfig, err := loadConfig()
		if err != nil {
			return err
		}
		controller := controllers.NewCLIController(nil, infraRepos.NewConfigRepository(appConfig.Limits),
			appConfig.Limits, cmd.InOrStdin(), cmd.OutOrStdout())
		return controller.HandleParams(paramsPercent)
	},
}

func init() {
	compressCmd.Flags().IntVar(&compressPercent, "percent", 0, "Процент сжатия (10-90)")
	compressCmd.Flags().IntVar(&compressLimitMB, "limit-mb", 0, "Лимит размера результата в MB")
	compressCmd.Flags().StringVarP(&compressOutput, "output", "o", "", "Выходной файл (по умолчанию рядом с исходным)")
	compressCmd.MarkFlagsMutuallyExclusive("percent", "limit-mb")
	rootCmd.AddCommand(compressCmd)

	paramsCmd.Flags().IntVar(&paramsPercent, "percent", 40, "Процент сжатия (10-90)")
	rootCmd.AddCommand(paramsCmd)
}

// jobFromFlags собирает задание из аргументов команды
func jobFromFlags(cmd *cobra.Command, input string) entities.JobConfig {
	job := entities.JobConfig{
		InputFile:  input,
		OutputFile: compressOutput,
	}

	switch {
	case cmd.Flags().Changed("limit-mb"):
		job.Mode = entities.ModeLimit
		job.TargetMB = compressLimitMB
	case cmd.Flags().Changed("percent"):
		job.Mode = entities.ModePercentage
		job.Percentage = compressPercent
	}

	if compressOutput == "" {
		job.OutputDirectory = filepath.Dir(input)
	}
	return job
}

func runCompress(cmd *cobra.Command, job entities.JobConfig) error {
	appConfig, err := loadConfig()
	if err != nil {
		return err
	}

	logger := newLogger(appConfig, os.Stderr)
	defer logger.Close()

	app, err := newApplication(appConfig, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	controller := controllers.NewCLIController(app.processJob, app.configRepo, appConfig.Limits,
		cmd.InOrStdin(), cmd.OutOrStdout())

	if err := controller.HandleCompress(cmd.Context(), job); err != nil {
		return fmt.Errorf("%s: %w", job.InputFile, err)
	}
	return nil
}
