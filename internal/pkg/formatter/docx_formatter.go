package formatter

import (
	"bytes"
	"strings"

	"github.com/unidoc/unioffice/document"
	"github.com/webchat/chat-relay/internal/entity"
)

const (
	docxContentType   = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	docxFileExtension = ".docx"
)

type DOCXFormatter struct{}

func NewDOCXFormatter() *DOCXFormatter {
	return &DOCXFormatter{}
}

func (mf *DOCXFormatter) Format(conv *entity.Conversation) ([]byte, error) {
	doc := document.New()
	defer doc.Close()

	titlePar := doc.AddParagraph()
	titlePar.SetStyle("Heading1")
	titlePar.AddRun().AddText(conv.Title)

	for _, msg := range conv.Messages {
		doc.AddParagraph()

		headingPar := doc.AddParagraph()
		headingPar.SetStyle("Heading3")
		headingPar.AddRun().AddText(messageHeading(msg))

		bodyPar := doc.AddParagraph()
		run := bodyPar.AddRun()
		for i, line := range strings.Split(messageBody(msg), "\n") {
			if i > 0 {
				run.AddBreak()
			}
			run.AddText(line)
		}
	}

	var buf bytes.Buffer
	if err := doc.Save(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (mf *DOCXFormatter) ContentType() string {
	return docxContentType
}

func (mf *DOCXFormatter) FileExtension() string {
	return docxFileExtension
}
