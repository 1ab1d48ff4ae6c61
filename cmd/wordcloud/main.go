package main

import (
	"context"
	"net/http"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/AnechkaShv/freqcloud/internal/cloud"
	"github.com/AnechkaShv/freqcloud/internal/config"
	"github.com/AnechkaShv/freqcloud/internal/server"
	"github.com/AnechkaShv/freqcloud/internal/storage"
)

var (
	app      = kingpin.New("wordcloud", "Render word-frequency csv files as word-cloud images.")
	logLevel = app.Flag("log-level", "Log level: debug, info, warn, error, fatal, panic").
			Envar("WORDCLOUD_LOG_LEVEL").Default("info").String()
	fontPath = app.Flag("font", "TrueType font file; the bundled Go Regular font when empty, which has no CJK glyphs").
			Envar("WORDCLOUD_FONT").String()

	renderCmd   = app.Command("render", "Render a csv to a PNG file.").Default()
	inputPath   = renderCmd.Flag("input", "Frequency csv with a header row").Envar("WORDCLOUD_INPUT").Default(config.Default().InputPath).String()
	labelColumn = renderCmd.Flag("label-column", "Column holding the labels").Envar("WORDCLOUD_LABEL_COLUMN").Default(config.Default().LabelColumn).String()
	freqColumn  = renderCmd.Flag("freq-column", "Column holding the frequencies").Envar("WORDCLOUD_FREQ_COLUMN").Default(config.Default().FreqColumn).String()
	outputPath  = renderCmd.Flag("output", "PNG file to write").Envar("WORDCLOUD_OUTPUT").Default(config.Default().OutputPath).String()
	show        = renderCmd.Flag("show", "Open the image in the system viewer after saving").Envar("WORDCLOUD_SHOW").Bool()

	serveCmd    = app.Command("serve", "Serve word-cloud rendering over HTTP.")
	addr        = serveCmd.Flag("addr", "Listen address").Envar("WORDCLOUD_ADDR").Default(":8083").String()
	storeDir    = serveCmd.Flag("store-dir", "Directory for rendered images").Envar("WORDCLOUD_STORE_DIR").Default("wordclouds").String()
	s3Bucket    = serveCmd.Flag("s3-bucket", "Upload images to this S3 bucket instead of the store directory").Envar("WORDCLOUD_S3_BUCKET").String()
	s3URLPrefix = serveCmd.Flag("s3-url-prefix", "Prefix for locations of uploaded images").Envar("WORDCLOUD_S3_URL_PREFIX").String()
)

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	log := logrus.New()
	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		log.WithError(err).Fatal("Invalid log level")
	}
	log.SetLevel(level)

	font, cleanup, err := resolveFont(*fontPath)
	if err != nil {
		log.WithError(err).Fatal("Cannot prepare font")
	}
	defer cleanup()

	switch command {
	case renderCmd.FullCommand():
		err = render(log, font)
	case serveCmd.FullCommand():
		err = serve(log, font)
	}
	if err != nil {
		cleanup()
		log.WithError(err).Fatal("wordcloud failed")
	}
}

func render(log *logrus.Logger, font string) error {
	cfg := config.Config{
		InputPath:   *inputPath,
		LabelColumn: *labelColumn,
		FreqColumn:  *freqColumn,
		FontPath:    font,
		OutputPath:  *outputPath,
		Show:        *show,
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	return cloud.NewRenderer(log).Render(context.Background(), cfg)
}

func serve(log *logrus.Logger, font string) error {
	var store storage.Store = storage.NewLocalStore(*storeDir)
	if *s3Bucket != "" {
		s3Store, err := storage.NewS3StoreFromEnv(context.Background(), *s3Bucket, *s3URLPrefix)
		if err != nil {
			return err
		}
		store = s3Store
	}

	handler := server.NewWordCloudHandler(cloud.NewRenderer(log), store, font, log)

	log.Printf("Word Cloud Service is running on %s", *addr)
	return http.ListenAndServe(*addr, server.NewRouter(handler))
}

// resolveFont returns path unchanged when set. Otherwise it materialises
// the bundled font in a temporary directory, removed by cleanup.
func resolveFont(path string) (string, func(), error) {
	if path != "" {
		return path, func() {}, nil
	}

	dir, err := os.MkdirTemp("", "wordcloud-font-")
	if err != nil {
		return "", nil, errors.Wrap(err, "creating font directory failed")
	}
	cleanup := func() { os.RemoveAll(dir) }

	font, err := cloud.WriteDefaultFont(dir)
	if err != nil {
		cleanup()
		return "", nil, err
	}
	return font, cleanup, nil
}
