package mode

// Preamble frames the model's role for every mode.
const Preamble = `
You are an expert Tamil data entry operator.
Analyze this image and transcribe its content exactly into valid JSON.
Preserve Tamil script exactly as written; do not translate or transliterate.
Do NOT use Markdown. Return raw JSON only.
`

const taskStructuredForm = `
TASK: Extract a structured school question paper.

JSON OUTPUT FORMAT:
{
  "header": {
    "class": "...", "marks": "...", "date": "...", "time": "..."
  },
  "sections": [
    {
      "roman": "I",
      "title": "Section title",
      "marks_eq": "6 X 1 = 6",
      "questions": [
        {
          "no": "1",
          "text": "Question text...",
          "type": "mcq",
          "options": ["Option 1", "Option 2", "Option 3", "Option 4"]
        }
      ]
    }
  ]
}
IMPORTANT: Extract options exactly as written. Omit "options" for questions that have none.
`

const taskVerbatim = `
TASK: Extract content EXACTLY as seen in the image.
Maintain the original structure, line breaks and formatting as much as possible.
If it is a list, keep it as a list. If it is a paragraph, keep it as a paragraph.

JSON OUTPUT FORMAT:
{
  "items": [
    {
      "type": "original",
      "content": "Full text of the region or section...",
      "style": "text"
    }
  ]
}
IMPORTANT: Do not change the text. Do not reformat. Just digitize what you see.
`

const taskMCQOnly = `
TASK: Extract ONLY multiple choice questions.

JSON OUTPUT FORMAT:
{ "items": [ { "type": "mcq", "q_no": "1", "text": "...", "options": ["...", "...", "...", "..."] } ] }
`

const taskParagraphOnly = `
TASK: Extract ONLY paragraphs.

JSON OUTPUT FORMAT:
{ "items": [ { "type": "para", "heading": "...", "text": "..." } ] }
`

const taskMixed = `
TASK: Extract EVERYTHING.

JSON OUTPUT FORMAT:
{ "items": [ { "type": "mcq", "q_no": "1", "text": "...", "options": ["..."] }, { "type": "para", "heading": "...", "text": "..." } ] }
`
