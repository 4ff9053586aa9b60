package config

// Profile is the static personal information the knowledge base and prompt
// templates are built from.
type Profile struct {
	Name     string
	Title    string
	Bio      string
	Summary  string
	Email    string
	LinkedIn string
	GitHub   string
	Twitter  string
}

// SkillGroup keeps skill categories ordered, unlike a map.
type SkillGroup struct {
	Category string
	Items    []string
}

func DefaultProfile() Profile {
	return Profile{
		Name:  "Sankalp Singh",
		Title: "AI Engineer | Machine Learning Enthusiast",
		Bio: "Passionate AI Engineer specializing in NLP, Computer Vision, and Deep Learning. " +
			"Building intelligent systems that solve real-world problems using cutting-edge ML technologies.",
		Summary: "I am an AI Engineer specializing in Machine Learning, Deep Learning, Gen AI, and Agentic AI. " +
			"I have experience with Python, TensorFlow, PyTorch, LangChain, FastAPI, and React. " +
			"I build intelligent systems and transform complex problems into elegant solutions.",
		Email:    "sankalp@example.com",
		LinkedIn: "https://linkedin.com/in/sankalp250",
		GitHub:   "https://github.com/sankalp250",
		Twitter:  "https://twitter.com/sankalp250",
	}
}

func DefaultSkills() []SkillGroup {
	return []SkillGroup{
		{Category: "Programming", Items: []string{"Python", "JavaScript", "SQL", "C++"}},
		{Category: "ML/DL Frameworks", Items: []string{"TensorFlow", "PyTorch", "Keras", "Scikit-learn"}},
		{Category: "NLP", Items: []string{"Transformers", "LangChain", "LangGraph", "Hugging Face"}},
		{Category: "Computer Vision", Items: []string{"OpenCV", "YOLO", "Detectron2"}},
		{Category: "Tools & Platforms", Items: []string{"Docker", "Git", "AWS", "Streamlit", "FastAPI"}},
		{Category: "Databases", Items: []string{"PostgreSQL", "MongoDB", "ChromaDB", "Pinecone"}},
	}
}

// FeaturedProjects are shown first in listings and appended to the resume
// document so the chatbot can name them.
func FeaturedProjects() []string {
	return []string{
		"agentic-qa-app",
		"promptboost",
		"studybuddy",
		"Reliable_RAG_v2",
		"health-insight-dashboard",
	}
}

// ProjectCategories maps a display category to the keywords that select it.
// Order matters: the first matching category wins.
func ProjectCategories() []struct {
	Name     string
	Keywords []string
} {
	return []struct {
		Name     string
		Keywords []string
	}{
		{"NLP", []string{"nlp", "language", "text", "chatbot", "transformer", "gpt", "bert"}},
		{"Computer Vision", []string{"cv", "vision", "image", "detection", "yolo", "opencv"}},
		{"Machine Learning", []string{"ml", "machine learning", "classification", "regression", "clustering"}},
		{"Deep Learning", []string{"deep learning", "neural", "cnn", "rnn", "lstm", "gan"}},
		{"Data Science", []string{"data", "analysis", "visualization", "pandas", "numpy"}},
		{"Web Development", []string{"web", "streamlit", "flask", "fastapi", "django"}},
	}
}
