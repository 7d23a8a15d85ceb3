package workflow

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/zero-day-ai/devflow/tool"
	"github.com/zero-day-ai/devflow/toolerr"
)

// CompressRequest are the arguments of compress_code.
type CompressRequest struct {
	PublishDestinationPath string `json:"publish_destinationpath" description:"Directory that holds the published versions"`
	Version                string `json:"version" description:"Version folder to compress"`
}

// Compress zips destination/version into destination/archiveName and
// returns the archive path. Entry names are relative to the version folder.
// An existing archive is replaced only once the new one is complete.
//
// version must name a folder strictly inside destination.
func Compress(destination, version, archiveName string) (string, error) {
	if err := checkVersion(version); err != nil {
		return "", err
	}
	if err := os.MkdirAll(destination, 0o755); err != nil {
		return "", compressErr("mkdir", "create destination directory", err)
	}

	src := OutputDir(destination, version)
	info, err := os.Stat(src)
	if err != nil {
		return "", compressErr("stat", fmt.Sprintf("version folder %s is not readable", src), err)
	}
	if !info.IsDir() {
		return "", compressErr("stat", fmt.Sprintf("version folder %s is not a directory", src), nil)
	}

	archive := filepath.Join(destination, archiveName)
	tmp, err := os.CreateTemp(destination, "."+archiveName+".*.tmp")
	if err != nil {
		return "", compressErr("create", "create temporary archive", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	zw := zip.NewWriter(tmp)
	if err := addTree(zw, src); err != nil {
		return "", compressErr("archive", "write archive", err)
	}
	if err := zw.Close(); err != nil {
		return "", compressErr("archive", "finish archive", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return "", compressErr("archive", "set archive permissions", err)
	}
	if err := tmp.Close(); err != nil {
		return "", compressErr("archive", "close archive", err)
	}
	if err := os.Rename(tmpName, archive); err != nil {
		return "", compressErr("rename", "replace "+archive, err)
	}
	committed = true
	return archive, nil
}

func addTree(zw *zip.Writer, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		name := filepath.ToSlash(rel)

		// follow symlinks to regular files, skip sockets and the like
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if info.IsDir() {
			if d.Type()&fs.ModeSymlink != 0 {
				return nil
			}
			_, err := zw.CreateHeader(&zip.FileHeader{Name: name + "/", Modified: info.ModTime()})
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		hdr, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		hdr.Name = name
		hdr.Method = zip.Deflate
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(w, f)
		return err
	})
}

func checkVersion(version string) error {
	clean := filepath.Clean(version)
	var reason string
	switch {
	case clean == ".":
		reason = "must name a folder inside the destination"
	case filepath.IsAbs(clean) || filepath.VolumeName(clean) != "":
		reason = "must be relative to the destination"
	case clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)):
		reason = "must not leave the destination"
	default:
		return nil
	}
	return toolerr.EnrichError(
		toolerr.New(CompressCode, "validate", toolerr.ErrCodeInvalidInput,
			fmt.Sprintf("version %q %s", version, reason)).
			WithClass(toolerr.ErrorClassSemantic),
	)
}

func compressErr(operation, message string, cause error) *toolerr.Error {
	e := toolerr.New(CompressCode, operation, toolerr.ErrCodeExecutionFailed, message)
	if cause != nil {
		e = e.WithCause(cause)
	}
	return toolerr.EnrichError(e)
}

func compressTool(opts Options) tool.Tool {
	logger := opts.Logger.With("tool", CompressCode)
	return tool.Define(CompressCode,
		"Compress a published version into a zip archive in the destination directory.",
		func(ctx context.Context, req CompressRequest) (*tool.Result, error) {
			archive, err := Compress(req.PublishDestinationPath, req.Version, opts.ArchiveName)
			if err != nil {
				logger.Warn("compress failed", "error", err)
				return nil, err
			}
			logger.Info("compressed", "archive", archive)
			return tool.Text("Code compressed and saved to " + archive), nil
		})
}
