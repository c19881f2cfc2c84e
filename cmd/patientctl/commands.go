package main

import (
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/jrsteele09/go-patient-portal/blobstore"
	"github.com/jrsteele09/go-patient-portal/patients"
	"github.com/rs/zerolog/log"
)

type listCommand struct {
	JSON bool `long:"json" description:"print JSON instead of a table"`
}

func (c *listCommand) Execute([]string) error {
	ctx, cancel := commandContext()
	defer cancel()

	list, err := connect(ctx).List(ctx)
	if err != nil {
		return err
	}
	if c.JSON {
		return printJSON(list)
	}
	if len(list) == 0 {
		fmt.Println("No patients found.")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCOUNTRY OF BIRTH\tDATE OF BIRTH")
	for _, p := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, p.Name, p.CountryOfBirth, p.DateOfBirth)
	}
	return tw.Flush()
}

type getCommand struct {
	Args struct {
		ID string `positional-arg-name:"id" required:"true"`
	} `positional-args:"true"`
}

func (c *getCommand) Execute([]string) error {
	ctx, cancel := commandContext()
	defer cancel()

	patient, err := connect(ctx).Get(ctx, c.Args.ID)
	if err != nil {
		return err
	}
	return printJSON(patient)
}

type uploadCommand struct {
	FileType    string `long:"type" default:"genetic-report" choice:"genetic-report" choice:"doctor-report" choice:"generic" description:"file category"`
	ContentType string `long:"content-type" description:"content type stored with the blob (default from extension)"`
	Args        struct {
		ID   string `positional-arg-name:"id" required:"true"`
		Path string `positional-arg-name:"file" required:"true"`
	} `positional-args:"true"`
}

func (c *uploadCommand) Execute([]string) error {
	ctx, cancel := commandContext()
	defer cancel()

	file, err := os.Open(c.Args.Path)
	if err != nil {
		return err
	}
	defer file.Close()

	fileName := filepath.Base(c.Args.Path)
	contentType := c.ContentType
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(fileName))
	}

	info, err := connect(ctx).RequestUpload(ctx, c.Args.ID, fileName, patients.FileType(c.FileType))
	if err != nil {
		return err
	}
	log.Debug().Str("file_url", info.FileURL).Msg("received upload url")

	if err := blobstore.NewAzureUploader().Upload(ctx, info.FileURL, contentType, file); err != nil {
		return err
	}
	log.Info().Str("patient_id", c.Args.ID).Str("file", fileName).Msg("File uploaded successfully!")
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
