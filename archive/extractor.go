/*
*

	@author: shiliang
	@date: 2025/3/12
	@note: 不可信压缩包的安全校验与解压。防御路径穿越、zip炸弹与资源耗尽，
	      单个条目的问题只跳过该条目，压缩包级别的问题整体拒绝。

*
*/
package archive

import (
	"archive/zip"
	"document-service/common"
	"document-service/log"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Limits 解压资源限制，可按实例覆盖
type Limits struct {
	MaxTotalSize        int64   // 解压后总字节数上限
	MaxFileSize         int64   // 单文件解压后字节数上限
	MaxFileCount        int     // 条目数量上限
	MaxCompressionRatio float64 // 单条目压缩比上限
	MaxPathLength       int     // 条目路径长度上限
	AllowedExtensions   map[string]bool
}

// DefaultLimits 默认限制。扩展名白名单只含文档/图片/文本/数据格式，
// 可执行文件与嵌套压缩包排除在外。
func DefaultLimits() Limits {
	return Limits{
		MaxTotalSize:        500 * 1024 * 1024,
		MaxFileSize:         100 * 1024 * 1024,
		MaxFileCount:        1000,
		MaxCompressionRatio: 100,
		MaxPathLength:       255,
		AllowedExtensions: map[string]bool{
			".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
			".ppt": true, ".pptx": true, ".txt": true, ".md": true, ".rtf": true,
			".csv": true, ".json": true, ".xml": true, ".yaml": true, ".yml": true,
			".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true,
			".bmp": true, ".tiff": true, ".html": true, ".htm": true,
		},
	}
}

// SecurityError 压缩包安全错误，校验失败或解压无法完成时返回
type SecurityError struct {
	Msg string
	Err error
}

func (e *SecurityError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *SecurityError) Unwrap() error { return e.Err }

// ValidationResult 一次校验的结果，SuspiciousFiles中每条原因都带有
// 出问题的条目路径，解压阶段据此精确跳过被标记的条目
type ValidationResult struct {
	Valid            bool
	Reason           string
	FileCount        int
	TotalSize        int64 // 非可疑条目解压后总大小
	CompressedSize   int64
	CompressionRatio float64
	SuspiciousFiles  []string

	flagged map[string]bool
}

// IsFlagged 判断条目是否被标记为可疑
func (r *ValidationResult) IsFlagged(entryPath string) bool {
	return r.flagged[entryPath]
}

// ExtractedFile 每个尝试解压的条目对应一条记录，失败的条目Valid为false
type ExtractedFile struct {
	OriginalPath string
	SafePath     string
	Size         int64
	FileType     string
	Valid        bool
	Error        string
}

// SecureExtractor 安全解压器
type SecureExtractor struct {
	limits Limits
}

// NewSecureExtractor 创建安全解压器，limits为nil时使用默认限制
func NewSecureExtractor(limits *Limits) *SecureExtractor {
	l := DefaultLimits()
	if limits != nil {
		l = *limits
	}
	return &SecureExtractor{limits: l}
}

// Validate 对压缩包做单遍校验，不做任何解压。
// 条目数超限与总大小超限整体拒绝；单条目问题只记为可疑并从总大小中排除。
func (e *SecureExtractor) Validate(archivePath string) (*ValidationResult, error) {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, common.NewCodedError(common.ErrCodeArchiveUnreadable, err)
	}
	defer reader.Close()

	result := &ValidationResult{flagged: make(map[string]bool)}

	var entries []*zip.File
	for _, f := range reader.File {
		if f.FileInfo().IsDir() {
			continue
		}
		entries = append(entries, f)
	}
	result.FileCount = len(entries)

	// 条目数超限整体拒绝，不做部分接受
	if len(entries) > e.limits.MaxFileCount {
		result.Reason = fmt.Sprintf("Too many files in archive: %d (max %d)", len(entries), e.limits.MaxFileCount)
		return result, nil
	}

	validCount := 0
	for _, f := range entries {
		reason := e.checkEntry(f)
		if reason != "" {
			result.SuspiciousFiles = append(result.SuspiciousFiles, reason)
			result.flagged[f.Name] = true
			continue
		}
		validCount++
		result.TotalSize += int64(f.UncompressedSize64)
		result.CompressedSize += int64(f.CompressedSize64)
	}

	if result.CompressedSize > 0 {
		result.CompressionRatio = float64(result.TotalSize) / float64(result.CompressedSize)
	}

	// 总大小超限是压缩包级别问题，与单条目问题不同，整体拒绝
	if result.TotalSize > e.limits.MaxTotalSize {
		result.Reason = fmt.Sprintf("Total uncompressed size %d exceeds limit %d", result.TotalSize, e.limits.MaxTotalSize)
		return result, nil
	}

	if validCount == 0 {
		result.Reason = "No valid files in archive"
		return result, nil
	}

	result.Valid = true
	return result, nil
}

// checkEntry 对单个条目独立检查，返回非空字符串表示可疑原因（内嵌条目路径）
func (e *SecureExtractor) checkEntry(f *zip.File) string {
	if isPathTraversal(f.Name, e.limits.MaxPathLength) {
		return fmt.Sprintf("Path traversal attempt: %s", f.Name)
	}
	if int64(f.UncompressedSize64) > e.limits.MaxFileSize {
		return fmt.Sprintf("File too large: %s (%d bytes)", f.Name, f.UncompressedSize64)
	}
	ext := strings.ToLower(path.Ext(normalizePath(f.Name)))
	if !e.limits.AllowedExtensions[ext] {
		return fmt.Sprintf("File type not allowed: %s", f.Name)
	}
	// 压缩后大小为0时跳过压缩比检查
	if f.CompressedSize64 > 0 {
		ratio := float64(f.UncompressedSize64) / float64(f.CompressedSize64)
		if ratio > e.limits.MaxCompressionRatio {
			return fmt.Sprintf("Suspicious compression ratio: %s (%.0f:1)", f.Name, ratio)
		}
	}
	return ""
}

// Extract 校验并解压压缩包。destDir为空时在临时目录下创建解压目录，
// 出错时只清理本次调用创建的临时目录，调用方提供的目录不动。
// 单个条目解压失败不会中断整批，每个尝试过的条目都有一条ExtractedFile记录。
func (e *SecureExtractor) Extract(archivePath, destDir string) (string, []ExtractedFile, error) {
	validation, err := e.Validate(archivePath)
	if err != nil {
		return "", nil, &SecurityError{Msg: "archive validation failed", Err: err}
	}
	if !validation.Valid {
		return "", nil, &SecurityError{Msg: validation.Reason}
	}

	createdTemp := false
	if destDir == "" {
		destDir, err = os.MkdirTemp("", "extract_")
		if err != nil {
			return "", nil, &SecurityError{Msg: "failed to create extraction directory", Err: err}
		}
		createdTemp = true
	} else if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", nil, &SecurityError{Msg: "failed to create extraction directory", Err: err}
	}

	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		if createdTemp {
			os.RemoveAll(destDir)
		}
		return "", nil, &SecurityError{Msg: "failed to reopen archive", Err: err}
	}
	defer reader.Close()

	var extracted []ExtractedFile
	used := make(map[string]bool)

	for _, f := range reader.File {
		if f.FileInfo().IsDir() {
			continue
		}
		// 校验阶段标记的条目精确跳过
		if validation.IsFlagged(f.Name) {
			continue
		}

		safeName := SanitizeFilename(f.Name)
		if used[safeName] {
			safeName = fmt.Sprintf("%d_%s", len(extracted), safeName)
		}
		used[safeName] = true

		record := ExtractedFile{
			OriginalPath: f.Name,
			SafePath:     filepath.Join(destDir, safeName),
			FileType:     strings.TrimPrefix(strings.ToLower(path.Ext(safeName)), "."),
		}

		size, entryErr := e.extractEntry(f, record.SafePath)
		record.Size = size
		if entryErr != nil {
			record.Error = entryErr.Error()
			log.Logger.Warnf("Failed to extract entry %s: %v", f.Name, entryErr)
		} else {
			record.Valid = true
		}
		extracted = append(extracted, record)
	}

	return destDir, extracted, nil
}

// extractEntry 流式写出单个条目，边写边校验累计字节数。
// 头部声明的大小是攻击者可控的，不能作为资源核算依据，
// 这里是独立于校验阶段声明值检查的第二道流式防线。
func (e *SecureExtractor) extractEntry(f *zip.File, destPath string) (int64, error) {
	rc, err := f.Open()
	if err != nil {
		return 0, fmt.Errorf("failed to open entry: %v", err)
	}
	defer rc.Close()

	out, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return 0, fmt.Errorf("failed to create output file: %v", err)
	}
	defer out.Close()

	var written int64
	buf := make([]byte, common.MAX_CHUNK_SIZE)
	for {
		n, readErr := rc.Read(buf)
		if n > 0 {
			written += int64(n)
			if written > e.limits.MaxFileSize {
				out.Close()
				os.Remove(destPath)
				return written, fmt.Errorf("file exceeded size limit %d during extraction", e.limits.MaxFileSize)
			}
			if _, writeErr := out.Write(buf[:n]); writeErr != nil {
				out.Close()
				os.Remove(destPath)
				return written, fmt.Errorf("failed to write output: %v", writeErr)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			out.Close()
			os.Remove(destPath)
			return written, fmt.Errorf("failed to read entry: %v", readErr)
		}
	}
	return written, nil
}

// isPathTraversal 检查绝对路径、..路径段（两种分隔符）与超长路径
func isPathTraversal(name string, maxLen int) bool {
	if len(name) > maxLen {
		return true
	}
	normalized := normalizePath(name)
	if strings.HasPrefix(normalized, "/") {
		return true
	}
	// Windows盘符形式的绝对路径
	if len(name) >= 2 && name[1] == ':' {
		return true
	}
	for _, seg := range strings.Split(normalized, "/") {
		if seg == ".." {
			return true
		}
	}
	return false
}

func normalizePath(name string) string {
	return strings.ReplaceAll(name, "\\", "/")
}

// SanitizeFilename 从条目路径推导安全的输出文件名：
// 只取basename，仅保留字母数字和._-，空结果回退为extracted_file，
// 超过100字符时截断并保留扩展名。
func SanitizeFilename(name string) string {
	base := path.Base(normalizePath(name))

	var b strings.Builder
	for _, r := range base {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') ||
			r == '.' || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()

	if strings.Trim(cleaned, "._-") == "" {
		cleaned = "extracted_file"
	}

	if len(cleaned) > 100 {
		ext := path.Ext(cleaned)
		if len(ext) >= 100 {
			ext = ext[:20]
		}
		cleaned = cleaned[:100-len(ext)] + ext
	}
	return cleaned
}
