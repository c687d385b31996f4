package summarize

// summaryPromptTemplate is the fixed-structure Hebrew prompt sent to the
// model. The format string expects: source, window start date, window end
// date, and the rendered evidence block. The model is told to answer only
// from the evidence, keep it short, and produce a brief summary followed by
// 3-5 key points.
const summaryPromptTemplate = `סכם בעברית, קצר ולעניין בלבד.
מקור: %s, חלון: %s–%s.
מטרה: לענות על השאילתה בהסתמך רק על הראיות.
פורמט: 1) 2–3 שורות תקציר. 2) 3–5 נקודות מפתח. אין להמציא.
ראיות:
%s
`

// citationsHeader separates the summary from the citations block in the
// final user-facing answer.
const citationsHeader = "— מקורות —"
