package editor

// DefaultTemplate seeds a session when nothing usable was persisted.
const DefaultTemplate = `\documentclass[11pt]{article}
\usepackage[margin=1in]{geometry}
\usepackage{amsmath}
\usepackage{booktabs}
\usepackage[hidelinks]{hyperref}

\begin{document}

\section*{texpad}

This is a quick test document.

Inline math: $E = mc^2$.

Displayed math:
\[
\int_0^1 x^2\,dx = \frac{1}{3}
\]

\bigskip

\begin{tabular}{@{}lrr@{}}
\toprule
Item & A & B \\
\midrule
Alpha & 10 & 20 \\
Beta  & 30 & 40 \\
Gamma & 50 & 60 \\
\bottomrule
\end{tabular}

\end{document}
`
