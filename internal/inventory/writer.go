package inventory

import (
	"encoding/csv"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

const (
	outputDirectoryPermissionsConstant = 0o755
	csvWrittenLogMessageConstant       = "wrote csv file"
	documentWrittenLogMessageConstant  = "wrote document"
	logFieldPathConstant               = "path"
	logFieldRowCountConstant           = "row_count"
)

// Writer persists inventory datasets and rendered documents to disk. Parent
// directories are created on demand and existing files are overwritten.
type Writer struct {
	logger *zap.Logger
}

// NewWriter constructs a Writer.
func NewWriter(logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{logger: logger}
}

// WriteOwnedCSV writes the owned-repository dataset with its fixed header.
func (writer *Writer) WriteOwnedCSV(path string, repositories []OwnedRepository) error {
	rows := make([][]string, 0, len(repositories))
	for _, repository := range repositories {
		rows = append(rows, repository.CSVRecord())
	}
	return writer.writeCSV(path, OwnedCSVHeader, rows)
}

// WriteStarredCSV writes the starred-repository dataset with its fixed header.
func (writer *Writer) WriteStarredCSV(path string, repositories []StarredRepository) error {
	rows := make([][]string, 0, len(repositories))
	for _, repository := range repositories {
		rows = append(rows, repository.CSVRecord())
	}
	return writer.writeCSV(path, StarredCSVHeader, rows)
}

// WriteDocument writes rendered document content to the supplied path.
func (writer *Writer) WriteDocument(path string, content string) error {
	if directoryError := writer.ensureParentDirectory(path); directoryError != nil {
		return directoryError
	}
	if writeError := os.WriteFile(path, []byte(content), 0o644); writeError != nil {
		return FileOperationError{Path: path, Operation: fileOperationWriteFileConstant, Cause: writeError}
	}
	writer.logger.Info(documentWrittenLogMessageConstant, zap.String(logFieldPathConstant, path))
	return nil
}

func (writer *Writer) writeCSV(path string, header []string, rows [][]string) error {
	if directoryError := writer.ensureParentDirectory(path); directoryError != nil {
		return directoryError
	}

	outputFile, createError := os.Create(path)
	if createError != nil {
		return FileOperationError{Path: path, Operation: fileOperationCreateFileConstant, Cause: createError}
	}
	defer func() {
		_ = outputFile.Close()
	}()

	csvWriter := csv.NewWriter(outputFile)
	if writeError := csvWriter.Write(header); writeError != nil {
		return FileOperationError{Path: path, Operation: fileOperationWriteFileConstant, Cause: writeError}
	}
	for _, row := range rows {
		if writeError := csvWriter.Write(row); writeError != nil {
			return FileOperationError{Path: path, Operation: fileOperationWriteFileConstant, Cause: writeError}
		}
	}
	csvWriter.Flush()
	if flushError := csvWriter.Error(); flushError != nil {
		return FileOperationError{Path: path, Operation: fileOperationWriteFileConstant, Cause: flushError}
	}

	writer.logger.Info(
		csvWrittenLogMessageConstant,
		zap.String(logFieldPathConstant, path),
		zap.Int(logFieldRowCountConstant, len(rows)),
	)
	return nil
}

func (writer *Writer) ensureParentDirectory(path string) error {
	parentDirectory := filepath.Dir(path)
	if parentDirectory == "." || parentDirectory == "" {
		return nil
	}
	if directoryError := os.MkdirAll(parentDirectory, outputDirectoryPermissionsConstant); directoryError != nil {
		return FileOperationError{Path: parentDirectory, Operation: fileOperationCreateDirectoryConstant, Cause: directoryError}
	}
	return nil
}
