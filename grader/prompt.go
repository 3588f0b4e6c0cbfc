package grader

const defaultPrompt = `You are grading a photographed exam page. Respond with a single JSON object and nothing else, using exactly this schema:

{
  "rotation_needed": 0 | 90 | 180 | 270,
  "detected_language": "en" | "zh",
  "marks": [
    {
      "x": <number 0-100>,
      "y": <number 0-100>,
      "status": "correct" | "incorrect",
      "question": "<the question text, when legible>",
      "student_answer": "<what the student wrote>",
      "correct_answer": "<the expected answer, only when the student is wrong>",
      "explanation": "<one short sentence on the mistake>"
    }
  ]
}

rotation_needed is the clockwise rotation in degrees that would make the page upright.
x and y are percentages of the image exactly as provided, before any rotation is applied, measured from the top-left corner.
Place one mark per answered question, centered on the student's written answer.
Omit optional text fields you cannot read. Do not wrap the JSON in markdown fences.`
