package service

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/haierkeys/collab-doc-service/internal/dto"
	"github.com/haierkeys/collab-doc-service/pkg/code"
	"github.com/haierkeys/collab-doc-service/pkg/timex"

	"go.uber.org/zap"
)

// 导出格式
const (
	ExportFormatMarkdown = "markdown"
	ExportFormatHTML     = "html"
	ExportFormatText     = "txt"
)

// ExportService 文档导出服务接口
type ExportService interface {
	// Export 将文档按指定格式导出
	Export(ctx context.Context, uid int64, params *dto.ExportRequest) (*dto.ExportDTO, error)
}

// exportService 实现 ExportService 接口
type exportService struct {
	documentService DocumentService
	logger          *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(documentService DocumentService, logger *zap.Logger) ExportService {
	return &exportService{
		documentService: documentService,
		logger:          logger,
	}
}

var (
	markdownHeadingRe  = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	markdownEmphasisRe = regexp.MustCompile(`(\*{1,3}|_{1,3})([^*_]+)(\*{1,3}|_{1,3})`)
	markdownLinkRe     = regexp.MustCompile(`\[([^\]]*)\]\(([^)]*)\)`)
	markdownCodeRe     = regexp.MustCompile("`([^`]*)`")
)

// Export 将文档按指定格式导出
// 文档正文按 Markdown 源文处理
func (s *exportService) Export(ctx context.Context, uid int64, params *dto.ExportRequest) (*dto.ExportDTO, error) {
	doc, err := s.documentService.GetForAccess(ctx, uid, params.DocumentID)
	if err != nil {
		return nil, err
	}

	baseName := sanitizeFileName(doc.Title)
	if baseName == "" {
		baseName = fmt.Sprintf("document-%d", doc.ID)
	}
	baseName = baseName + "-" + timex.Now().Format("20060102150405")

	switch params.Format {
	case ExportFormatMarkdown:
		return &dto.ExportDTO{
			FileName:    baseName + ".md",
			ContentType: "text/markdown; charset=utf-8",
			Body:        doc.Content,
		}, nil
	case ExportFormatHTML:
		return &dto.ExportDTO{
			FileName:    baseName + ".html",
			ContentType: "text/html; charset=utf-8",
			Body:        renderHTML(doc.Title, doc.Content),
		}, nil
	case ExportFormatText:
		return &dto.ExportDTO{
			FileName:    baseName + ".txt",
			ContentType: "text/plain; charset=utf-8",
			Body:        stripMarkdown(doc.Content),
		}, nil
	default:
		return nil, code.ErrorExportFormat.WithDetails(params.Format)
	}
}

// renderHTML 将 Markdown 源文包装为可阅读的 HTML 页面
// 按空行切分段落，正文内容做 HTML 转义
func renderHTML(title, content string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>")
	b.WriteString(html.EscapeString(title))
	b.WriteString("</title>\n</head>\n<body>\n<h1>")
	b.WriteString(html.EscapeString(title))
	b.WriteString("</h1>\n")

	for _, block := range strings.Split(content, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(strings.ReplaceAll(html.EscapeString(block), "\n", "<br>\n"))
		b.WriteString("</p>\n")
	}

	b.WriteString("</body>\n</html>\n")
	return b.String()
}

// stripMarkdown 去除常见 Markdown 标记，得到纯文本
func stripMarkdown(content string) string {
	text := markdownHeadingRe.ReplaceAllString(content, "")
	text = markdownLinkRe.ReplaceAllString(text, "$1")
	text = markdownEmphasisRe.ReplaceAllString(text, "$2")
	text = markdownCodeRe.ReplaceAllString(text, "$1")
	return text
}

// sanitizeFileName 清理标题中不适合做文件名的字符
func sanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	replacer := strings.NewReplacer(
		"/", "-", "\\", "-", ":", "-", "*", "-",
		"?", "-", "\"", "-", "<", "-", ">", "-", "|", "-",
	)
	name = replacer.Replace(name)
	// 按字符截断，避免切开多字节字符
	if runes := []rune(name); len(runes) > 64 {
		name = string(runes[:64])
	}
	return name
}

// 确保 exportService 实现了 ExportService 接口
var _ ExportService = (*exportService)(nil)
