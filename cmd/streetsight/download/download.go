package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cozy-creator/hf-hub/hub"
	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v7"
	"github.com/vbauerster/mpb/v7/decor"

	"github.com/streetsight/streetsight/internal/config"
)

// The serving core only requires a readable artifact at the configured model
// path; this command is the "remote fetch" collaborator that puts it there.
var Cmd = &cobra.Command{
	Use:   "download",
	Short: "Download the model artifact from Hugging Face into the models directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		repoID, err := cmd.Flags().GetString("repo-id")
		if err != nil {
			return err
		}
		if repoID == "" {
			return fmt.Errorf("repo-id is required")
		}

		fileName, err := cmd.Flags().GetString("file-name")
		if err != nil {
			return err
		}

		revision, err := cmd.Flags().GetString("revision")
		if err != nil {
			return err
		}

		cacheDir, err := cmd.Flags().GetString("cache-dir")
		if err != nil {
			return err
		}

		cfg := config.MustGetConfig()
		if fileName == "" {
			fileName = cfg.ModelFile
		}

		client := hub.DefaultClient()
		if cacheDir != "" {
			client.CacheDir = cacheDir
		}

		repo := &hub.Repo{Id: repoID}
		if revision != "" {
			repo.Revision = revision
		}

		params := hub.DownloadParams{
			Repo:     repo,
			FileName: fileName,
		}

		cached, err := client.Download(&params)
		if err != nil {
			return fmt.Errorf("failed to download %s from %s: %w", fileName, repoID, err)
		}

		dest := cfg.ModelPath()
		if err := copyWithProgress(cached, dest); err != nil {
			return fmt.Errorf("failed to install model artifact: %w", err)
		}

		fmt.Println("Download complete:", dest)
		return nil
	},
}

func init() {
	Cmd.Flags().String("repo-id", "", "The ID of the model repository to download from")
	Cmd.Flags().String("file-name", "", "The artifact file to download; defaults to the configured model file")
	Cmd.Flags().String("revision", "", "The revision of the model to download")
	Cmd.Flags().String("cache-dir", "", "The directory to cache the downloaded file")
}

// copyWithProgress installs the cached download at dest, rendering a
// progress bar for the multi-hundred-megabyte artifacts models tend to be.
func copyWithProgress(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}

	tmpPath := dest + ".tmp"
	out, err := os.Create(tmpPath)
	if err != nil {
		return err
	}

	progress := mpb.New(mpb.WithWidth(60))
	bar := progress.AddBar(info.Size(),
		mpb.PrependDecorators(
			decor.Name(filepath.Base(dest), decor.WC{W: 40, C: decor.DidentRight}),
			decor.CountersKibiByte("% .2f / % .2f"),
		),
		mpb.AppendDecorators(
			decor.EwmaETA(decor.ET_STYLE_GO, 90),
		),
	)

	reader := bar.ProxyReader(in)
	defer reader.Close()

	if _, err := io.Copy(out, reader); err != nil {
		out.Close()
		os.Remove(tmpPath)
		return err
	}

	if err := out.Close(); err != nil {
		return err
	}
	progress.Wait()

	return os.Rename(tmpPath, dest)
}
